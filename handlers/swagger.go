package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Video Auth Service - Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the service's endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "Video Auth Service API", "version": "1.0.0" },
  "paths": {
    "/auth/register": {
      "post": {
        "summary": "Register a new user",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["name","email","nationalId","password"],"properties":{"name":{"type":"string"},"email":{"type":"string"},"nationalId":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "201": { "description": "user created" }, "400": { "description": "validation error" }, "500": { "description": "provider or directory failure" } }
      }
    },
    "/auth/login": {
      "post": {
        "summary": "Authenticate with email and password",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["email","password"],"properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}},
        "responses": { "200": { "description": "accessToken, idToken, refreshToken" }, "400": { "description": "validation error or pending challenge" }, "401": { "description": "invalid credentials" } }
      }
    },
    "/auth/confirm-temporary-password": {
      "post": {
        "summary": "Replace a temporary password and receive tokens",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["email","temporaryPassword","newPassword"],"properties":{"email":{"type":"string"},"temporaryPassword":{"type":"string"},"newPassword":{"type":"string"}}}}}},
        "responses": { "200": { "description": "token set" }, "400": { "description": "validation error" }, "500": { "description": "provider failure" } }
      }
    },
    "/auth/recover": {
      "post": {
        "summary": "Start password recovery",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["email"],"properties":{"email":{"type":"string"}}}}}},
        "responses": { "200": { "description": "recovery code sent" } }
      }
    },
    "/auth/confirm-recovery": {
      "post": {
        "summary": "Complete password recovery with emailed code",
        "requestBody": { "content": { "application/json": { "schema": {"type":"object","required":["email","code","newPassword"],"properties":{"email":{"type":"string"},"code":{"type":"string"},"newPassword":{"type":"string"}}}}}},
        "responses": { "200": { "description": "password updated" }, "400": { "description": "invalid code" } }
      }
    },
    "/auth/validate": {
      "get": { "summary": "Resolve the bearer token to its directory record", "responses": { "200": { "description": "id, name, email, nationalId" }, "401": { "description": "missing credential" }, "403": { "description": "invalid token" }, "404": { "description": "no directory record" } } }
    },
    "/usuarios/email/{email}": {
      "get": { "summary": "Directory lookup by email", "responses": { "200": { "description": "user record" }, "404": { "description": "not found" } } }
    },
    "/usuarios/cpf/{cpf}": {
      "get": { "summary": "Directory lookup by national id", "responses": { "200": { "description": "user record" }, "404": { "description": "not found" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus exposition", "responses": { "200": { "description": "metrics" } } } }
  }
}`
