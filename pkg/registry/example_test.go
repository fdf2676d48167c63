package registry_test

import (
	"fmt"

	"github.com/dukex/nodeflow/pkg/models"
	"github.com/dukex/nodeflow/pkg/registry"
)

func ExampleValidateNodeData() {
	err := registry.ValidateNodeData(models.NodeTypeSlack, map[string]any{
		"variableName": "notify",
		"webhookUrl":   "https://hooks.slack.com/services/T000/B000/XXXX",
		"content":      "New signup: {{googleForm.respondentEmail}}",
	})
	fmt.Println(err)
	// Output: <nil>
}

func ExampleCatalogue() {
	for _, info := range registry.Catalogue()[:2] {
		fmt.Println(info.Type, info.Category)
	}
	// Output:
	// INITIAL trigger
	// MANUAL_TRIGGER trigger
}
