package prompts

const groupSpec = `Respond with a JSON object matching this exact structure:

{
  "groups": [
    {
      "name": "<document name>",
      "description": "<one sentence summary>",
      "pages": [1, 2]
    }
  ]
}

Field constraints:
- name: A short title for the document (e.g., "Invoice 2024-031",
  "Lease Agreement"). Plain words, no file extension.
- description: One sentence describing what the document is.
- pages: The page numbers belonging to this document, in reading order.
  Page numbers are 1-based and refer to the page list provided below.

Behavioral constraints:
- Always respond with valid JSON, no markdown fencing
- Assign every page number exactly once across all groups
- Never invent page numbers that are not in the page list
- Order groups by the first page they contain`

// Spec returns the response specification the classifier must follow.
func Spec() string {
	return groupSpec
}
