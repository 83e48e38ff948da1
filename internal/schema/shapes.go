package schema

const sessionObject = `{
	"type": "object",
	"required": ["id", "name", "created_at"],
	"properties": {
		"id": {"type": "integer"},
		"name": {"type": "string"},
		"created_at": {"type": "string"},
		"updated_at": {"type": ["string", "null"]}
	}
}`

const messageObject = `{
	"type": "object",
	"required": ["id", "type", "content", "created_at"],
	"properties": {
		"id": {"type": "integer"},
		"type": {"type": "string"},
		"content": {"type": "string"},
		"created_at": {"type": "string"}
	}
}`

// Optional blocks are typed as plain objects, so an explicit null fails.
const chatResponseObject = `{
	"type": "object",
	"required": ["content", "type"],
	"properties": {
		"content": {"type": "string"},
		"type": {"type": "string"},
		"usage_metadata": {
			"type": "object",
			"required": ["input_tokens", "output_tokens", "total_tokens"],
			"properties": {
				"input_tokens": {"type": "integer"},
				"output_tokens": {"type": "integer"},
				"total_tokens": {"type": "integer"}
			}
		},
		"response_metadata": {
			"type": "object",
			"properties": {
				"model": {"type": "string"},
				"created_at": {"type": "string"},
				"message": {
					"type": "object",
					"properties": {
						"role": {"type": "string"}
					}
				},
				"total_duration": {"type": "number"},
				"load_duration": {"type": "number"}
			}
		}
	}
}`

var (
	SessionShape = MustShape("session", sessionObject)

	SessionListShape = MustShape("session list", `{
		"type": "array",
		"items": `+sessionObject+`
	}`)

	// SessionEnvelopeShape covers both upload and delete answers
	SessionEnvelopeShape = MustShape("session envelope", `{
		"type": "object",
		"required": ["ok"],
		"properties": {
			"ok": {"type": "boolean"},
			"data": `+sessionObject+`
		}
	}`)

	MessageListShape = MustShape("message list", `{
		"type": "array",
		"items": `+messageObject+`
	}`)

	ChatResponseShape = MustShape("chat response", chatResponseObject)

	HealthShape = MustShape("health", `{
		"type": "object",
		"required": ["response"],
		"properties": {
			"response": {"type": "string"}
		}
	}`)

	OKShape = MustShape("ok", `{
		"type": "object",
		"required": ["ok"],
		"properties": {
			"ok": {"type": "boolean"}
		}
	}`)
)
