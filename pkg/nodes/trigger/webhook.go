package trigger

// GoogleFormSeed builds the initial data of a run started by a Google Form
// submission. The whole submission is kept under "raw".
func GoogleFormSeed(body map[string]any) map[string]any {
	return map[string]any{
		"googleForm": map[string]any{
			"formId":          body["formId"],
			"formTitle":       body["formTitle"],
			"responseId":      body["responseId"],
			"timestamp":       body["timestamp"],
			"respondentEmail": body["respondentEmail"],
			"responses":       body["responses"],
			"raw":             body,
		},
	}
}

// StripeSeed builds the initial data of a run started by a Stripe event.
// Only the event's data.object is kept under "raw".
func StripeSeed(event map[string]any) map[string]any {
	var object any
	if data, ok := event["data"].(map[string]any); ok {
		object = data["object"]
	}

	return map[string]any{
		"stripe": map[string]any{
			"eventId":   event["id"],
			"eventType": event["type"],
			"timestamp": event["created"],
			"livemode":  event["livemode"],
			"raw":       object,
		},
	}
}
