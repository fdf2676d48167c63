package httprequest

// Schema returns the JSON schema for HTTP_REQUEST node data.
func Schema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"variableName": map[string]any{
				"type":        "string",
				"description": "Context key the response is stored under",
				"minLength":   1,
			},
			"endpoint": map[string]any{
				"type":        "string",
				"description": "URL to call. Supports templating, e.g. https://api.example.com/users/{{user.id}}",
				"minLength":   1,
			},
			"method": map[string]any{
				"type":    "string",
				"default": "GET",
				"enum":    []string{"GET", "POST", "PUT", "DELETE", "PATCH"},
			},
			"body": map[string]any{
				"type":        "string",
				"description": "JSON request body for POST, PUT and PATCH. Supports templating, e.g. {\"user\": {{json user}} }. Leave a space between {{json ...}} and a closing brace, since }}} closes a triple-stash",
			},
		},
		"required": []string{"variableName", "endpoint"},
	}
}
