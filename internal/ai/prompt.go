/**
 * @description
 * Shared prompt construction for agent configuration generation. All three
 * vendors receive the same instruction template so their outputs normalize
 * into the same schema.
 */
package ai

// agentConfigPrompt builds the generation prompt for a user description.
func agentConfigPrompt(description string) string {
	return "Create an AI agent configuration based on this description: " + description + "\n\n" +
		"Return a JSON object with:\n" +
		"- name: A concise name for the agent\n" +
		"- description: A clear description of what the agent does\n" +
		"- variables: An array of configuration variables the user should provide\n\n" +
		"Each variable should have:\n" +
		"- name: camelCase variable name\n" +
		"- label: Human-readable label\n" +
		"- type: \"text\", \"textarea\", \"select\", or \"radio\"\n" +
		"- description: What this variable is for\n" +
		"- defaultValue: Optional default value\n" +
		"- options: Array of options (required for select/radio types)\n\n" +
		"Return ONLY the JSON object, no other text."
}

const agentConfigSystemPrompt = "You are an AI agent configuration generator. Return only valid JSON, no other text."
