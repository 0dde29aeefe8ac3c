package tools

// Common JSON Schema building blocks

// StringSchema creates a JSON schema for a string field
func StringSchema(description string) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": description,
	}
}

// NumberSchema creates a JSON schema for a number field
func NumberSchema(description string) map[string]any {
	return map[string]any{
		"type":        "number",
		"description": description,
	}
}

// IntegerSchema creates a JSON schema for an integer field
func IntegerSchema(description string) map[string]any {
	return map[string]any{
		"type":        "integer",
		"description": description,
	}
}

// BooleanSchema creates a JSON schema for a boolean field
func BooleanSchema(description string) map[string]any {
	return map[string]any{
		"type":        "boolean",
		"description": description,
	}
}

// ObjectSchema creates a JSON schema for an object with arbitrary properties
func ObjectSchema(description string) map[string]any {
	return map[string]any{
		"type":        "object",
		"description": description,
	}
}

// EnumSchema creates a JSON schema for an enum field
func EnumSchema(description string, values []string) map[string]any {
	return map[string]any{
		"type":        "string",
		"description": description,
		"enum":        values,
	}
}

// ArraySchema creates a JSON schema for an array field
func ArraySchema(description string, items map[string]any) map[string]any {
	schema := map[string]any{
		"type":        "array",
		"description": description,
	}
	if items != nil {
		schema["items"] = items
	}
	return schema
}

// BuildSchema creates a complete JSON schema object with properties and required fields.
// Undeclared properties are rejected by the validator, so the schema says so too.
func BuildSchema(properties map[string]any, required []string) map[string]any {
	schema := map[string]any{
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// InputSchema renders a parameter list as the JSON schema advertised in tools/list
func InputSchema(params []Param) map[string]any {
	properties := make(map[string]any, len(params))
	var required []string
	for _, p := range params {
		schema := paramSchema(p)
		if p.Default != nil {
			schema["default"] = p.Default
		}
		properties[p.Name] = schema
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return BuildSchema(properties, required)
}

func paramSchema(p Param) map[string]any {
	switch p.Kind {
	case KindNumber:
		return NumberSchema(p.Description)
	case KindInteger:
		return IntegerSchema(p.Description)
	case KindBoolean:
		return BooleanSchema(p.Description)
	case KindEnum:
		return EnumSchema(p.Description, p.Enum)
	case KindObject:
		return ObjectSchema(p.Description)
	case KindArray:
		var items map[string]any
		if p.Items != nil {
			items = paramSchema(*p.Items)
		}
		return ArraySchema(p.Description, items)
	default:
		return StringSchema(p.Description)
	}
}
