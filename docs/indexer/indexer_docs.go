// Package indexer registers the swagger document of the indexer API.
// Regenerate with: swag init -g cmd/indexer/main.go -o docs/indexer --instanceName indexer
package indexer

import "github.com/swaggo/swag"

const docTemplateindexer = `{
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
        "/mints": {"get": {"tags": ["Indexer Query"], "summary": "List mints", "produces": ["application/json"],
            "parameters": [
                {"type": "integer", "default": 0, "name": "cursor", "in": "query"},
                {"type": "integer", "default": 20, "name": "size", "in": "query"}
            ],
            "responses": {"200": {"description": "OK"}}}},
        "/mints/{id}": {"get": {"tags": ["Indexer Query"], "summary": "Get mint", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/mints/token/{tokenId}": {"get": {"tags": ["Indexer Query"], "summary": "List mints by token", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "tokenId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/mints/creator/{address}": {"get": {"tags": ["Indexer Query"], "summary": "List mints by creator", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "address", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}},
        "/roles/granted": {"get": {"tags": ["Indexer Query"], "summary": "List role grants", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "account", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}},
        "/roles/revoked": {"get": {"tags": ["Indexer Query"], "summary": "List role revokes", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "account", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}},
        "/distributions/batch": {"get": {"tags": ["Indexer Query"], "summary": "List batch distributions", "produces": ["application/json"],
            "parameters": [
                {"type": "string", "name": "tokenId", "in": "query"},
                {"type": "string", "name": "distributor", "in": "query"}
            ],
            "responses": {"200": {"description": "OK"}}}},
        "/distributions/single": {
            "get": {"tags": ["Indexer Query"], "summary": "List single distributions", "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "tokenId", "in": "query"},
                    {"type": "string", "name": "distributor", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["Distribution"], "summary": "Distribute to one recipient", "consumes": ["application/json"], "produces": ["application/json"],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "503": {"description": "Service Unavailable"}}}},
        "/distributions/validate": {"post": {"tags": ["Distribution"], "summary": "Validate recipient CSV", "consumes": ["application/json"], "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}}}},
        "/distributions": {"post": {"tags": ["Distribution"], "summary": "Start distribution", "consumes": ["application/json"], "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "503": {"description": "Service Unavailable"}}}},
        "/distributions/jobs/{jobId}": {"get": {"tags": ["Distribution"], "summary": "Get distribution job", "produces": ["application/json"],
            "parameters": [{"type": "string", "name": "jobId", "in": "path", "required": true}],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/subgraph": {"post": {"tags": ["Subgraph"], "summary": "Subgraph query", "consumes": ["application/json"], "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "503": {"description": "Service Unavailable"}}}},
        "/subgraph/latest-mints": {"get": {"tags": ["Subgraph"], "summary": "Latest mints (subgraph)", "produces": ["application/json"],
            "parameters": [{"type": "integer", "default": 10, "name": "first", "in": "query"}],
            "responses": {"200": {"description": "OK"}}}},
        "/status": {"get": {"tags": ["Indexer Status"], "summary": "Get sync status", "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}},
        "/stats": {"get": {"tags": ["Indexer Status"], "summary": "Get statistics", "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}}}},
        "/admin/rescan": {"post": {"tags": ["Indexer Admin"], "summary": "Rescan blocks", "consumes": ["application/json"], "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}},
        "/admin/rescan/status": {"get": {"tags": ["Indexer Admin"], "summary": "Get rescan status", "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}}}},
        "/admin/rescan/stop": {"post": {"tags": ["Indexer Admin"], "summary": "Stop rescan", "produces": ["application/json"],
            "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}}
    }
}`

// SwaggerInfoindexer holds exported Swagger Info so clients can modify it
var SwaggerInfoindexer = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:7281",
	BasePath:         "/api/v1",
	Schemes:          []string{"https", "http"},
	Title:            "Eternal Mint Indexer API",
	Description:      "Indexed NFT mint, role and distribution events, plus CSV validation and server-side distribution",
	InfoInstanceName: "indexer",
	SwaggerTemplate:  docTemplateindexer,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfoindexer.InstanceName(), SwaggerInfoindexer)
}
