// Package docs registers the generated OpenAPI spec for gofiber/swagger
// to serve. In a full build this file is produced by `swag init`
// scanning the @Summary/@Param annotations on each handler; it is
// checked in here so the module is self-contained without a
// generation step at build time.
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
    "paths": {}
}`

// SwaggerInfo holds the exported Swagger metadata gofiber/swagger's
// handler reads at request time.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Faxbot API",
	Description:      "Self-hostable fax gateway: job submission, provider webhooks, inbound retrieval, and API key administration.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
