package catalog

import "github.com/santhosh-tekuri/jsonschema/v5"

const documentSchemaURL = "https://questline.local/schemas/transitions.schema.json"

// documentSchemaJSON checks the structural shape of a catalog document.
// Semantic rules (unique ids, rule references, lore anchors) are reported by
// Validate instead, so an imperfect catalog still loads.
const documentSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["transitions"],
  "properties": {
    "transitions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "entityType", "fromState", "trigger", "toState"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "entityType": {"type": "string"},
          "fromState": {"type": "string"},
          "trigger": {"type": "string"},
          "toState": {"type": "string"},
          "consequence": {"type": "string"},
          "impactScope": {"type": "string"},
          "ruleRef": {"type": "string"},
          "playerFacingReason": {"type": "string"},
          "timeBlock": {
            "type": "object",
            "properties": {
              "unit": {"type": "string"},
              "value": {"type": "number"}
            }
          },
          "loreAnchors": {
            "type": "array",
            "items": {"type": "string"}
          }
        }
      }
    }
  }
}`

var documentSchema = jsonschema.MustCompileString(documentSchemaURL, documentSchemaJSON)
