package prompts

import "github.com/JaimeStill/scribe/pkg/openapi"

// Schemas returns the component schemas of the prompt responses.
func Schemas() map[string]*openapi.Schema {
	return map[string]*openapi.Schema{
		"ModeContent": {
			Type: "object",
			Properties: map[string]*openapi.Schema{
				"mode":   {Type: "string"},
				"prompt": {Type: "string"},
			},
		},
	}
}

var listOp = &openapi.Operation{
	Summary: "List preset prompts",
	Responses: map[int]*openapi.Response{
		200: {
			Description: "Preset prompts by mode",
			Content: map[string]*openapi.MediaType{
				"application/json": {
					Schema: &openapi.Schema{Type: "array", Items: openapi.SchemaRef("ModeContent")},
				},
			},
		},
	},
}

var defaultOp = &openapi.Operation{
	Summary: "Get the default prompt",
	Responses: map[int]*openapi.Response{
		200: {Description: "Default prompt"},
	},
}

var findOp = &openapi.Operation{
	Summary:    "Get the prompt for a mode",
	Parameters: []*openapi.Parameter{openapi.PathParam("mode", "Recognition mode", "markdown", "free", "figure", "describe")},
	Responses: map[int]*openapi.Response{
		200: openapi.ResponseJSON("Preset prompt", "ModeContent"),
		400: openapi.ResponseRef("BadRequest"),
	},
}
