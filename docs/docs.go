// Package docs expone la definición OpenAPI del servicio para
// http-swagger. Mantenida a mano junto a las anotaciones de handlers.
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
        "/workflow/profile": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["workflow"],
                "summary": "Registra el perfil de la mascota y avanza a selección de productos",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/workflow/stage": {
            "get": {
                "produces": ["application/json"],
                "tags": ["workflow"],
                "summary": "Etapa actual del flujo",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/workflow/products": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Lista el catálogo para la especie del perfil (con cache)",
                "parameters": [
                    {"type": "string", "name": "category", "in": "query"},
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "price_min", "in": "query"},
                    {"type": "string", "name": "price_max", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/workflow/products/manual": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Agrega un producto manual y lo selecciona",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/workflow/selection": {
            "get": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Selección actual",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Selecciona un producto",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"},
                    "409": {"description": "Conflict"}
                }
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["catalog"],
                "summary": "Vacía la selección",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/workflow/recommend": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["recommend"],
                "summary": "Corre el motor de recomendación y reemplaza la selección",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/workflow/analyze": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Arranca el análisis nutricional de la selección",
                "responses": {
                    "202": {"description": "Accepted"},
                    "409": {"description": "Conflict"}
                }
            }
        },
        "/workflow/analysis/progress": {
            "get": {
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Progreso del análisis en curso",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/workflow/analysis/cancel": {
            "post": {
                "produces": ["application/json"],
                "tags": ["analysis"],
                "summary": "Cancela el análisis en curso",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/workflow/results": {
            "get": {
                "produces": ["application/json"],
                "tags": ["results"],
                "summary": "Resultados rankeados (anonimizados hasta revelar)",
                "parameters": [
                    {"type": "string", "name": "ranking", "in": "query", "description": "final | ideal | budget"}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/workflow/results/reveal": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["results"],
                "summary": "Revela la identidad de un producto del resultado",
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Not Found"}
                }
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Pet Food Advisor API",
	Description:      "Flujo de asesoría de alimentación para mascotas: perfil, catálogo, recomendación y análisis nutricional.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
