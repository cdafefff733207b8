package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {"title": "Department Timetable API", "description": "Session placement, conflict detection and completion tracking for a department timetable.", "version": "1.0.0"},
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "securityDefinitions": {"BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}},
    "paths": {
        "/auth/login": {"post": {"tags": ["Authentication"], "summary": "Authenticate user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}]}},
        "/auth/me": {"get": {"tags": ["Authentication"], "summary": "Current user claims", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}},
        "/catalog": {"get": {"tags": ["Timetable"], "summary": "Weekday, slot and room catalogs", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}},
        "/assignments/check": {"post": {"tags": ["Assignments"], "summary": "Check whether a placement is free", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CheckAvailabilityRequest"}}]}},
        "/assignments": {"post": {"tags": ["Assignments"], "summary": "Place a subject on its first credits weekdays", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignSubjectRequest"}}]}, "delete": {"tags": ["Assignments"], "summary": "Remove every session of a subject at a semester slot", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "semester", "in": "query", "type": "integer", "required": true}, {"name": "slot", "in": "query", "type": "string", "required": true}, {"name": "subjectId", "in": "query", "type": "string", "required": true}]}},
        "/sessions": {"post": {"tags": ["Sessions"], "summary": "Place a single session", "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AssignDayRequest"}}]}, "get": {"tags": ["Sessions"], "summary": "List sessions by equality filter", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "semester", "in": "query", "type": "integer", "required": false}, {"name": "weekday", "in": "query", "type": "string", "required": false}, {"name": "slot", "in": "query", "type": "string", "required": false}, {"name": "subjectId", "in": "query", "type": "string", "required": false}, {"name": "teacherId", "in": "query", "type": "string", "required": false}, {"name": "room", "in": "query", "type": "string", "required": false}]}},
        "/sessions/{id}": {"delete": {"tags": ["Sessions"], "summary": "Remove one session", "responses": {"204": {"description": "No Content"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}]}},
        "/conflicts": {"get": {"tags": ["Conflicts"], "summary": "Scan every session for double-booked rooms and teachers", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}},
        "/semesters/{semester}/stats": {"get": {"tags": ["Completion"], "summary": "Completion totals for a semester", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "semester", "in": "path", "type": "integer", "required": true}]}},
        "/semesters/{semester}/progress": {"get": {"tags": ["Completion"], "summary": "Per-subject completion for a semester", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "semester", "in": "path", "type": "integer", "required": true}]}},
        "/semesters/{semester}/subjects/{subjectId}/status": {"get": {"tags": ["Completion"], "summary": "Completion state of one subject", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "semester", "in": "path", "type": "integer", "required": true}, {"name": "subjectId", "in": "path", "type": "string", "required": true}]}},
        "/semesters/{semester}/timetable": {"get": {"tags": ["Timetable"], "summary": "Weekly grid of one semester", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "semester", "in": "path", "type": "integer", "required": true}]}},
        "/semesters/{semester}/timetable/export": {"get": {"tags": ["Timetable"], "summary": "Download a semester grid", "responses": {"200": {"description": "File", "schema": {"type": "file"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "semester", "in": "path", "type": "integer", "required": true}, {"name": "format", "in": "query", "type": "string", "required": false}], "produces": ["text/csv", "application/pdf", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"]}},
        "/semesters/{semester}/rooms/available": {"get": {"tags": ["Timetable"], "summary": "Rooms free at a slot on every requested weekday", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "semester", "in": "path", "type": "integer", "required": true}, {"name": "slot", "in": "query", "type": "string", "required": true}, {"name": "weekdays", "in": "query", "type": "string", "required": false}]}},
        "/rooms/{room}/timetable": {"get": {"tags": ["Timetable"], "summary": "Weekly grid of one room across semesters", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "room", "in": "path", "type": "string", "required": true}]}},
        "/subjects": {"get": {"tags": ["Subjects"], "summary": "List subjects", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "semester", "in": "query", "type": "integer", "required": false}, {"name": "search", "in": "query", "type": "string", "required": false}]}, "post": {"tags": ["Subjects"], "summary": "Create subject", "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubjectRequest"}}]}},
        "/subjects/{id}": {"get": {"tags": ["Subjects"], "summary": "Get subject by id", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}]}, "put": {"tags": ["Subjects"], "summary": "Update subject", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubjectRequest"}}]}, "delete": {"tags": ["Subjects"], "summary": "Delete subject with its sessions and qualifications", "responses": {"204": {"description": "No Content"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}]}},
        "/subjects/{id}/teachers": {"get": {"tags": ["Subjects"], "summary": "Teachers qualified to teach a subject", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}]}},
        "/teachers": {"get": {"tags": ["Teachers"], "summary": "List teachers", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "search", "in": "query", "type": "string", "required": false}, {"name": "subjectId", "in": "query", "type": "string", "required": false}]}, "post": {"tags": ["Teachers"], "summary": "Create teacher", "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherRequest"}}]}},
        "/teachers/{id}": {"get": {"tags": ["Teachers"], "summary": "Get teacher", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}]}, "put": {"tags": ["Teachers"], "summary": "Update teacher", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherRequest"}}]}, "delete": {"tags": ["Teachers"], "summary": "Delete teacher", "responses": {"204": {"description": "No Content"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}]}},
        "/teachers/{id}/subjects": {"post": {"tags": ["Teachers"], "summary": "Qualify a teacher for a subject", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherSubjectRequest"}}]}, "put": {"tags": ["Teachers"], "summary": "Replace a teacher's qualified subjects", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherSubjectsRequest"}}]}},
        "/teachers/{id}/subjects/{subjectId}": {"delete": {"tags": ["Teachers"], "summary": "Remove a qualified subject", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "subjectId", "in": "path", "type": "string", "required": true}]}},
        "/teachers/{id}/availability": {"put": {"tags": ["Teachers"], "summary": "Replace a teacher's availability mask", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AvailabilityRequest"}}]}},
        "/teachers/{id}/workload": {"get": {"tags": ["Teachers"], "summary": "Weekly hours against placed sessions", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}]}},
        "/teachers/{id}/timetable": {"get": {"tags": ["Timetable"], "summary": "Weekly grid of one teacher across semesters", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}]}},
        "/teachers/{id}/calendar.ics": {"get": {"tags": ["Timetable"], "summary": "Download a teacher's recurring sessions as iCalendar", "responses": {"200": {"description": "File", "schema": {"type": "file"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}], "produces": ["text/calendar"]}},
        "/teachers/{id}/calendar/link": {"get": {"tags": ["Timetable"], "summary": "Signed subscription link for a teacher's calendar", "security": [{"BearerAuth": []}], "produces": ["application/json"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/feeds/teachers/{id}/calendar.ics": {"get": {"tags": ["Timetable"], "summary": "Public iCalendar feed behind a signed token", "produces": ["text/calendar"], "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}, {"type": "string", "name": "token", "in": "query", "required": true}], "responses": {"200": {"description": "File", "schema": {"type": "file"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}}},
        "/users": {"get": {"tags": ["Users"], "summary": "List users", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "role", "in": "query", "type": "string", "required": false}, {"name": "active", "in": "query", "type": "boolean", "required": false}, {"name": "teacherId", "in": "query", "type": "string", "required": false}, {"name": "username", "in": "query", "type": "string", "required": false}]}, "post": {"tags": ["Users"], "summary": "Create user", "responses": {"201": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateUserRequest"}}]}},
        "/users/{id}": {"get": {"tags": ["Users"], "summary": "Get user detail", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}]}, "put": {"tags": ["Users"], "summary": "Update user", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateUserRequest"}}]}, "delete": {"tags": ["Users"], "summary": "Delete user", "responses": {"204": {"description": "No Content"}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}], "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}]}},
        "/overview": {"get": {"tags": ["Overview"], "summary": "Catalog and session totals", "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}, "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}, "security": [{"BearerAuth": []}]}}
    },
    "definitions": {
        "LoginRequest": {"type": "object", "required": ["username", "password", "role"], "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string", "enum": ["DIRECTOR", "DEPARTMENT_HEAD", "TEACHER"]}}},
        "CheckAvailabilityRequest": {"type": "object", "required": ["semester", "weekday", "slot"], "properties": {"semester": {"type": "integer"}, "weekday": {"type": "string"}, "slot": {"type": "string"}, "teacher_id": {"type": "string", "x-nullable": true}, "room": {"type": "string", "x-nullable": true}}},
        "AssignSubjectRequest": {"type": "object", "required": ["semester", "subject_id", "slot"], "properties": {"semester": {"type": "integer"}, "subject_id": {"type": "string"}, "slot": {"type": "string"}, "teacher_id": {"type": "string", "x-nullable": true}, "room": {"type": "string", "x-nullable": true}}},
        "AssignDayRequest": {"type": "object", "required": ["semester", "weekday", "slot", "subject_id"], "properties": {"semester": {"type": "integer"}, "weekday": {"type": "string"}, "slot": {"type": "string"}, "subject_id": {"type": "string"}, "teacher_id": {"type": "string", "x-nullable": true}, "room": {"type": "string", "x-nullable": true}}},
        "SubjectRequest": {"type": "object", "required": ["name", "credits", "semester"], "properties": {"name": {"type": "string"}, "credits": {"type": "integer"}, "semester": {"type": "integer"}}},
        "TeacherRequest": {"type": "object", "required": ["name"], "properties": {"name": {"type": "string"}, "weekly_hours": {"type": "integer"}, "qualified_subject_ids": {"type": "array", "items": {"type": "string"}}}},
        "TeacherSubjectRequest": {"type": "object", "required": ["subject_id"], "properties": {"subject_id": {"type": "string"}}},
        "TeacherSubjectsRequest": {"type": "object", "properties": {"subject_ids": {"type": "array", "items": {"type": "string"}}}},
        "AvailabilityRequest": {"type": "object", "required": ["mask"], "properties": {"mask": {"type": "object", "additionalProperties": {"type": "boolean"}}}},
        "CreateUserRequest": {"type": "object", "required": ["username", "password", "role"], "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string"}, "teacher_id": {"type": "string", "x-nullable": true}, "active": {"type": "boolean"}}},
        "UpdateUserRequest": {"type": "object", "properties": {"username": {"type": "string"}, "password": {"type": "string"}, "role": {"type": "string"}, "teacher_id": {"type": "string", "x-nullable": true}, "active": {"type": "boolean"}}},
        "Pagination": {"type": "object", "properties": {"page": {"type": "integer"}, "page_size": {"type": "integer"}, "total_count": {"type": "integer"}}},
        "APIError": {"type": "object", "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "status": {"type": "integer"}}},
        "ResponseEnvelope": {"type": "object", "properties": {"data": {"type": "object"}, "error": {"$ref": "#/definitions/APIError"}, "pagination": {"$ref": "#/definitions/Pagination"}, "meta": {"type": "object"}}}
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
