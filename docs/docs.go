// Package docs registra la especificación OpenAPI servida en /swagger.
// Se regenera con `swag init -g cmd/api/main.go -o docs`.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/registerRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/sessionResponse"}},
                    "400": {"description": "invalid input", "schema": {"type": "string"}},
                    "409": {"description": "email already registered", "schema": {"type": "string"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/loginRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/sessionResponse"}},
                    "401": {"description": "invalid email or password", "schema": {"type": "string"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current user",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}}
                }
            }
        },
        "/pets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "List pets",
                "parameters": [{"type": "string", "description": "Category filter (puppy, kitten, other)", "name": "type", "in": "query"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/PetResponse"}}},
                    "400": {"description": "unknown type", "schema": {"type": "string"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Create pet (admin)",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/createPetRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/PetResponse"}},
                    "400": {"description": "invalid input", "schema": {"type": "string"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/reset": {
            "post": {
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Reset all adoptions (admin)",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResultResponse"}},
                    "403": {"description": "forbidden", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/{petID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Get pet",
                "parameters": [{"type": "integer", "description": "Pet ID", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/PetResponse"}},
                    "404": {"description": "pet not found", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/{petID}/adopt": {
            "post": {
                "produces": ["application/json"],
                "tags": ["economy"],
                "summary": "Adopt pet",
                "parameters": [{"type": "integer", "description": "Pet ID", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResultResponse"}},
                    "400": {"description": "pet already adopted", "schema": {"type": "string"}},
                    "404": {"description": "pet not found", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/{petID}/actions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["economy"],
                "summary": "Care action on an adopted pet",
                "parameters": [
                    {"type": "integer", "description": "Pet ID", "name": "petID", "in": "path", "required": true},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/petActionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResultResponse"}},
                    "400": {"description": "insufficient funds", "schema": {"type": "string"}},
                    "403": {"description": "pet is not adopted by this user", "schema": {"type": "string"}},
                    "404": {"description": "pet not found", "schema": {"type": "string"}}
                }
            }
        },
        "/pets/{petID}/return": {
            "post": {
                "produces": ["application/json"],
                "tags": ["economy"],
                "summary": "Return pet to the shelter",
                "parameters": [{"type": "integer", "description": "Pet ID", "name": "petID", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResultResponse"}},
                    "400": {"description": "insufficient funds", "schema": {"type": "string"}},
                    "403": {"description": "pet is not adopted by this user", "schema": {"type": "string"}}
                }
            }
        },
        "/actions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["economy"],
                "summary": "Care action (generic)",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/actionRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResultResponse"}},
                    "400": {"description": "unknown action", "schema": {"type": "string"}},
                    "403": {"description": "pet is not adopted by this user", "schema": {"type": "string"}}
                }
            }
        },
        "/shop": {
            "get": {
                "produces": ["application/json"],
                "tags": ["shop"],
                "summary": "Shop catalog",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/ItemResponse"}}}
                }
            }
        },
        "/shop/buy": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["shop"],
                "summary": "Buy an item",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/buyRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResultResponse"}},
                    "400": {"description": "insufficient funds", "schema": {"type": "string"}}
                }
            }
        },
        "/audit": {
            "get": {
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "Audit history",
                "parameters": [
                    {"type": "integer", "description": "User filter (admin only)", "name": "userId", "in": "query"},
                    {"type": "integer", "description": "Max entries (default 50, max 500)", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/EntryResponse"}}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "registerRequest": {"type": "object", "properties": {"name": {"type": "string"}, "email": {"type": "string"}, "password": {"type": "string"}}},
        "loginRequest": {"type": "object", "properties": {"email": {"type": "string"}, "password": {"type": "string"}}},
        "sessionResponse": {"type": "object", "properties": {"user": {"$ref": "#/definitions/UserResponse"}, "token": {"type": "string"}, "expires_at": {"type": "string"}}},
        "InventoryResponse": {"type": "object", "properties": {"food": {"type": "integer"}, "toy": {"type": "integer"}, "treat": {"type": "integer"}}},
        "UserResponse": {"type": "object", "properties": {
            "id": {"type": "integer"}, "name": {"type": "string"}, "email": {"type": "string"}, "role": {"type": "string"},
            "budget": {"type": "integer"}, "inventory": {"$ref": "#/definitions/InventoryResponse"},
            "adoptedPets": {"type": "array", "items": {"type": "integer"}}
        }},
        "createPetRequest": {"type": "object", "properties": {
            "name": {"type": "string"}, "type": {"type": "string", "enum": ["puppy", "kitten", "other"]}, "breed": {"type": "string"},
            "age": {"type": "integer"}, "gender": {"type": "string"}, "description": {"type": "string"}, "image": {"type": "string"}
        }},
        "PetResponse": {"type": "object", "properties": {
            "id": {"type": "integer"}, "name": {"type": "string"}, "type": {"type": "string", "enum": ["puppy", "kitten", "other"]},
            "breed": {"type": "string"}, "age": {"type": "integer"}, "gender": {"type": "string"}, "description": {"type": "string"},
            "image": {"type": "string"}, "adopted": {"type": "boolean"}, "adoptedBy": {"type": "integer"},
            "hunger": {"type": "integer"}, "happiness": {"type": "integer"}
        }},
        "petActionRequest": {"type": "object", "properties": {"action": {"type": "string", "enum": ["feed", "play", "treat", "return"]}, "useInventory": {"type": "boolean"}}},
        "actionRequest": {"type": "object", "properties": {"petId": {"type": "integer"}, "action": {"type": "string", "enum": ["feed", "play", "treat", "return"]}, "useInventory": {"type": "boolean"}}},
        "buyRequest": {"type": "object", "properties": {"item": {"type": "string", "enum": ["food", "toy", "treat"]}}},
        "ItemResponse": {"type": "object", "properties": {"item": {"type": "string"}, "price": {"type": "integer"}, "description": {"type": "string"}}},
        "ResultResponse": {"type": "object", "properties": {"message": {"type": "string"}, "user": {"$ref": "#/definitions/UserResponse"}, "pet": {"$ref": "#/definitions/PetResponse"}}},
        "EntryResponse": {"type": "object", "properties": {
            "id": {"type": "string"}, "timestamp": {"type": "string"}, "userId": {"type": "integer"}, "petId": {"type": "integer"},
            "action": {"type": "string"}, "details": {"type": "object"}
        }}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pet adoption economy API",
	Description:      "Adopción, cuidado y devolución de mascotas con presupuesto e inventario.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
