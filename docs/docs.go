// Package docs registers the OpenAPI document served under /swagger/.
//
// Regenerate with: swag init -g cmd/eactranslator/main.go -d ./,./internal/transport/http
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/directions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["lookup"],
                "summary": "List translation directions",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/http.DirectionInfo"}
                        }
                    }
                }
            }
        },
        "/dispatch": {
            "post": {
                "description": "Accepts a JSON message (text, or base64 audio) or raw WAV bytes with the\nX-EAC-* headers. The message is transcribed when it carries audio,\ntranslated, and spoken when the response mode asks for audio.",
                "consumes": ["application/json", "audio/wav"],
                "produces": ["application/json"],
                "tags": ["dispatch"],
                "summary": "Dispatch a text or voice message",
                "parameters": [
                    {
                        "description": "Dispatch request (JSON). For raw audio, POST the bytes directly.",
                        "name": "message",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/message.Message"}
                    },
                    {"type": "string", "description": "Direction label (raw audio uploads)", "name": "X-EAC-Direction", "in": "header"},
                    {"type": "string", "description": "Tone label (raw audio uploads)", "name": "X-EAC-Tone", "in": "header"},
                    {"type": "string", "description": "Sender identifier (raw audio uploads)", "name": "X-EAC-Source", "in": "header"},
                    {"type": "string", "description": "text, audio or text+audio (raw audio uploads)", "name": "X-EAC-Response-Mode", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/message.DispatchResult"}},
                    "400": {"description": "Invalid request", "schema": {"type": "string"}},
                    "500": {"description": "Internal processing error", "schema": {"type": "string"}}
                }
            }
        },
        "/speak": {
            "post": {
                "description": "Returns the synthesized audio. Any synthesis failure, including a\nmissing credential, yields 204 with no body.",
                "consumes": ["application/json"],
                "produces": ["audio/wav"],
                "tags": ["speech"],
                "summary": "Synthesize speech",
                "parameters": [
                    {
                        "description": "Text to speak",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.SpeakRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "file"}},
                    "204": {"description": "No audio available", "schema": {"type": "string"}},
                    "400": {"description": "Invalid request body", "schema": {"type": "string"}}
                }
            }
        },
        "/tones": {
            "get": {
                "produces": ["application/json"],
                "tags": ["lookup"],
                "summary": "List tones",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "type": "array",
                            "items": {"$ref": "#/definitions/http.ToneInfo"}
                        }
                    }
                }
            }
        },
        "/transcribe": {
            "post": {
                "description": "Accepts a WAV recording as the raw request body. Recordings that are\ntoo short or cannot be recognized produce a warning in \"output\"\ninstead of an error.",
                "consumes": ["audio/wav"],
                "produces": ["application/json"],
                "tags": ["translate"],
                "summary": "Transcribe and translate a recording",
                "parameters": [
                    {"type": "string", "description": "Direction label", "name": "X-EAC-Direction", "in": "header", "required": true},
                    {"type": "string", "description": "Tone label", "name": "X-EAC-Tone", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.TranslateResponse"}},
                    "400": {"description": "Unknown direction or tone, or speech input disabled", "schema": {"type": "string"}},
                    "500": {"description": "Model load or inference failure", "schema": {"type": "string"}}
                }
            }
        },
        "/translate": {
            "post": {
                "description": "Translates text along one of the supported directions, optionally\nprefixed with a tone instruction. A warning line is prepended to\nthe output when the detected language differs from the source.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["translate"],
                "summary": "Translate text",
                "parameters": [
                    {
                        "description": "Text, direction label and tone label",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.TranslateRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.TranslateResponse"}},
                    "400": {"description": "Unknown direction or tone", "schema": {"type": "string"}},
                    "500": {"description": "Model load or inference failure", "schema": {"type": "string"}}
                }
            }
        },
        "/ws": {
            "get": {
                "description": "Upgrade to a WebSocket. Send one JSON message per text frame; each\nframe is answered with one dispatch result.",
                "tags": ["dispatch"],
                "summary": "Dispatch over WebSocket",
                "responses": {
                    "101": {"description": "Switching Protocols", "schema": {"type": "string"}}
                }
            }
        }
    },
    "definitions": {
        "http.DirectionInfo": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "models": {"type": "array", "items": {"type": "string"}},
                "route": {"type": "string"}
            }
        },
        "http.SpeakRequest": {
            "type": "object",
            "properties": {
                "direction": {"type": "string", "example": "English → Swahili"},
                "language": {"type": "string", "example": "sw"},
                "text": {"type": "string", "example": "Habari"}
            }
        },
        "http.ToneInfo": {
            "type": "object",
            "properties": {
                "label": {"type": "string"},
                "prefix": {"type": "string"}
            }
        },
        "http.TranslateRequest": {
            "type": "object",
            "properties": {
                "direction": {"type": "string", "example": "English → Swahili"},
                "text": {"type": "string", "example": "Hello"},
                "tone": {"type": "string", "example": "Neutral"}
            }
        },
        "http.TranslateResponse": {
            "type": "object",
            "properties": {
                "detected_language": {"type": "string"},
                "intermediate": {"type": "string"},
                "output": {"type": "string"},
                "transcript": {"type": "string"},
                "translation": {"type": "string"},
                "warning": {"type": "string"}
            }
        },
        "message.DispatchResult": {
            "type": "object",
            "properties": {
                "detected_language": {"type": "string"},
                "error": {"type": "string"},
                "intermediate": {"type": "string"},
                "message_id": {"type": "string"},
                "output": {"type": "string"},
                "response_audio": {"type": "string"},
                "response_content_type": {"type": "string"},
                "transcript": {"type": "string"},
                "translation": {"type": "string"},
                "warning": {"type": "string"}
            }
        },
        "message.Message": {
            "type": "object",
            "properties": {
                "audio": {"type": "string", "format": "byte"},
                "content_type": {"type": "string"},
                "direction": {"type": "string"},
                "id": {"type": "string"},
                "response_mode": {"type": "string", "enum": ["text", "audio", "text+audio"]},
                "source": {"type": "string"},
                "text": {"type": "string"},
                "timestamp": {"type": "string"},
                "tone": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "EAC Translator API",
	Description:      "English, French and Swahili translation with tone control, voice input and speech output.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
