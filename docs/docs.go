// Package docs holds the swagger document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/teams": {
            "get": {
                "description": "Teams ordered by rating, highest first.",
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Standings",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.Team"}}},
                    "503": {"description": "Storage unavailable", "schema": {"$ref": "#/definitions/error"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["teams"],
                "summary": "Add a team",
                "parameters": [
                    {"description": "Team name", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.createTeamInput"}}
                ],
                "responses": {
                    "201": {"description": "Team created", "schema": {"$ref": "#/definitions/models.Team"}},
                    "400": {"description": "Missing or duplicate name", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/matches": {
            "get": {
                "description": "Stored match records, newest first.",
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Match history",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.MatchRecord"}}}
                }
            },
            "post": {
                "description": "The winner always scores 10. Legacy teamAId/teamBId/scoreA/scoreB payloads are accepted.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Record a match",
                "parameters": [
                    {"description": "Match result", "name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/league.MatchRequest"}}
                ],
                "responses": {
                    "201": {"description": "matchId, ratingDelta, updatedStandings", "schema": {"type": "object"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/matches/preview": {
            "get": {
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Preview rating changes",
                "parameters": [
                    {"type": "integer", "description": "Winner team ID", "name": "winnerId", "in": "query", "required": true},
                    {"type": "integer", "description": "Loser team ID", "name": "loserId", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/matches/{matchID}": {
            "delete": {
                "description": "Removes the match and replays the remaining history.",
                "produces": ["application/json"],
                "tags": ["matches"],
                "summary": "Delete a match",
                "parameters": [
                    {"type": "integer", "description": "Match ID", "name": "matchID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "ok", "schema": {"type": "object"}},
                    "404": {"description": "Match not found", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/recompute": {
            "post": {
                "produces": ["application/json"],
                "tags": ["league"],
                "summary": "Replay the whole history",
                "responses": {
                    "200": {"description": "ok and the ids of skipped records", "schema": {"type": "object"}}
                }
            }
        }
    },
    "definitions": {
        "error": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "handlers.createTeamInput": {
            "type": "object",
            "properties": {"name": {"type": "string"}}
        },
        "league.MatchRequest": {
            "type": "object",
            "properties": {
                "winnerId": {"type": "integer"},
                "loserId": {"type": "integer"},
                "loserScore": {"type": "integer", "minimum": 0, "maximum": 10},
                "teamAId": {"type": "integer"},
                "teamBId": {"type": "integer"},
                "scoreA": {"type": "number"},
                "scoreB": {"type": "number"}
            }
        },
        "models.Team": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "elo": {"type": "number"},
                "wins": {"type": "integer"},
                "losses": {"type": "integer"},
                "plus_minus": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        },
        "models.MatchRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "winner_id": {"type": "integer"},
                "loser_id": {"type": "integer"},
                "winner_score": {"type": "number"},
                "loser_score": {"type": "number"},
                "elo_change_winner": {"type": "number"},
                "elo_change_loser": {"type": "number"},
                "created_at": {"type": "string", "format": "date-time"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Fidel League API",
	Description:      "ELO standings and match history for the Fidel league.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
