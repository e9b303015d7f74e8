// Package docs serves the OpenAPI document for the swagger UI.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/v1/register": {
            "post": {"tags": ["auth"], "summary": "Register a user account", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}}}
        },
        "/api/auth/v1/login": {
            "post": {"tags": ["auth"], "summary": "Exchange credentials for a bearer token", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/auth/v1/me": {
            "get": {"tags": ["auth"], "summary": "Return the authenticated user profile", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}}}
        },
        "/api/auth/v1/users/{user_id}/deactivate": {
            "post": {"tags": ["auth"], "summary": "Deactivate a user account (admin)", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/api/patients/v1/patients": {
            "post": {"tags": ["patients"], "summary": "Register a patient record", "responses": {"201": {"description": "Created"}}},
            "get": {"tags": ["patients"], "summary": "List patients", "responses": {"200": {"description": "OK"}}}
        },
        "/api/patients/v1/patients/{patient_id}": {
            "get": {"tags": ["patients"], "summary": "Fetch a patient record", "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}}
        },
        "/api/patients/v1/patients/{patient_id}/consent": {
            "post": {"tags": ["patients"], "summary": "Update patient consent", "responses": {"200": {"description": "OK"}}}
        },
        "/api/patients/v1/patients/{patient_id}/artifacts": {
            "post": {"tags": ["patients"], "summary": "Attach a clinical artifact", "responses": {"201": {"description": "Created"}}},
            "get": {"tags": ["patients"], "summary": "List patient artifacts", "responses": {"200": {"description": "OK"}}}
        },
        "/api/patients/v1/artifacts/{artifact_id}": {
            "get": {"tags": ["patients"], "summary": "Download an artifact body", "responses": {"200": {"description": "OK"}}}
        },
        "/api/grn/v1/models": {
            "post": {"tags": ["grn"], "summary": "Create a gene regulatory network model", "responses": {"201": {"description": "Created"}}},
            "get": {"tags": ["grn"], "summary": "List models", "responses": {"200": {"description": "OK"}}}
        },
        "/api/grn/v1/models/{model_id}": {
            "get": {"tags": ["grn"], "summary": "Fetch a model", "responses": {"200": {"description": "OK"}}},
            "delete": {"tags": ["grn"], "summary": "Delete a draft model", "responses": {"204": {"description": "No Content"}}}
        },
        "/api/grn/v1/models/{model_id}/verify": {
            "post": {"tags": ["grn"], "summary": "Run qualitative property checks against a model", "responses": {"200": {"description": "OK"}}}
        },
        "/api/analysis/v1/plans": {
            "post": {"tags": ["analysis"], "summary": "Create an analysis plan with routed methods", "responses": {"201": {"description": "Created"}}}
        },
        "/api/analysis/v1/plans/{plan_id}": {
            "get": {"tags": ["analysis"], "summary": "Fetch an analysis plan", "responses": {"200": {"description": "OK"}}}
        },
        "/api/analysis/v1/plans/{plan_id}/dispatch": {
            "post": {"tags": ["analysis"], "summary": "Dispatch a drafted plan", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/api/analysis/v1/patients/{patient_id}/plans": {
            "get": {"tags": ["analysis"], "summary": "List plans for a patient", "responses": {"200": {"description": "OK"}}}
        },
        "/api/ensemble/v1/predictions": {
            "post": {"tags": ["ensemble"], "summary": "Combine method outputs into an ensemble prediction", "responses": {"201": {"description": "Created"}}}
        },
        "/api/ensemble/v1/predictions/{prediction_id}": {
            "get": {"tags": ["ensemble"], "summary": "Fetch an ensemble prediction", "responses": {"200": {"description": "OK"}}}
        },
        "/api/ensemble/v1/patients/{patient_id}/predictions": {
            "get": {"tags": ["ensemble"], "summary": "List predictions for a patient", "responses": {"200": {"description": "OK"}}}
        },
        "/api/explain/v1/explanations": {
            "post": {"tags": ["explain"], "summary": "Generate a feature attribution explanation", "responses": {"201": {"description": "Created"}}}
        },
        "/api/explain/v1/explanations/{explanation_id}": {
            "get": {"tags": ["explain"], "summary": "Fetch an explanation", "responses": {"200": {"description": "OK"}}}
        },
        "/api/explain/v1/predictions/{prediction_id}/explanations": {
            "get": {"tags": ["explain"], "summary": "List explanations for a prediction", "responses": {"200": {"description": "OK"}}}
        },
        "/api/vitals/v1/events": {
            "post": {"tags": ["vitals"], "summary": "Ingest a vital sign event", "responses": {"201": {"description": "Created"}, "200": {"description": "Duplicate"}}}
        },
        "/api/vitals/v1/patients/{patient_id}/events": {
            "get": {"tags": ["vitals"], "summary": "List recent vital events for a patient", "responses": {"200": {"description": "OK"}}}
        },
        "/api/vitals/v1/alerts": {
            "get": {"tags": ["vitals"], "summary": "List alerts", "responses": {"200": {"description": "OK"}}}
        },
        "/api/vitals/v1/alerts/{alert_id}/ack": {
            "post": {"tags": ["vitals"], "summary": "Acknowledge an alert", "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}}
        },
        "/api/workflows/v1/workflows": {
            "post": {"tags": ["workflows"], "summary": "Submit an analysis workflow (idempotent)", "responses": {"201": {"description": "Created"}, "200": {"description": "Replayed"}}},
            "get": {"tags": ["workflows"], "summary": "List workflows", "responses": {"200": {"description": "OK"}}}
        },
        "/api/workflows/v1/workflows/{workflow_id}": {
            "get": {"tags": ["workflows"], "summary": "Fetch a workflow", "responses": {"200": {"description": "OK"}}}
        },
        "/api/workflows/v1/workflows/{workflow_id}/results": {
            "get": {"tags": ["workflows"], "summary": "Fetch results of a completed workflow", "responses": {"200": {"description": "OK"}, "400": {"description": "Not Ready"}}}
        },
        "/api/workflows/v1/workflows/{workflow_id}/cancel": {
            "post": {"tags": ["workflows"], "summary": "Cancel a pending or running workflow", "responses": {"200": {"description": "OK"}}}
        },
        "/api/workflows/v1/workflows/{workflow_id}/retry": {
            "post": {"tags": ["workflows"], "summary": "Requeue a failed workflow", "responses": {"200": {"description": "OK"}}}
        },
        "/api/workflows/v1/workflows/{workflow_id}/progress": {
            "post": {"tags": ["workflows"], "summary": "Report executor progress", "responses": {"200": {"description": "OK"}}}
        },
        "/ws/patients/{patient_id}": {
            "get": {"tags": ["vitals"], "summary": "WebSocket stream of vital events and alerts", "responses": {"101": {"description": "Switching Protocols"}}}
        },
        "/healthz": {
            "get": {"tags": ["platform"], "summary": "Liveness probe", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Helix Clinical Modeling Platform API",
	Description:      "Patient data, GRN modeling, ensemble prediction, explainability, vitals streaming, and workflow orchestration.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
