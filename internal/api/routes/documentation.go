package routes

/*
API Routes Documentation
========================

Base URL: http://localhost:8080

## Public Routes

### Health Check
GET /health
- Description: Check service liveness
- Authentication: None
- Response: {"status": "ok"}

## Fax Routes

### Submit Fax
POST /fax
- Description: Queue an outbound fax job against the active provider backend
- Authentication: X-API-Key, scope fax:send
- Body: multipart/form-data — to (E.164 number), file (PDF or plain text)
- Response: Created job (id, status, backend)

### Get Fax Status
GET /fax/{id}
- Description: Fetch the current state of a submitted job
- Authentication: X-API-Key, scope fax:read
- Response: Job details (status, pages, error, timestamps)

### Download Fax PDF
GET /fax/{id}/pdf?token={artifactToken}
- Description: Stream the job's converted PDF
- Authentication: Artifact token only (no X-API-Key) — the token is
  minted alongside the job and embeds the record id and kind
- Response: application/pdf, no-store cache headers

## Inbound Routes

### List Inbound Faxes
GET /inbound
- Description: List received faxes, newest first
- Authentication: X-API-Key, scope inbound:list
- Query Params: to_number, status, mailbox, since, page, per_page
- Response: Paginated list of inbound faxes

### Get Inbound Fax
GET /inbound/{id}
- Description: Fetch a single received fax's metadata
- Authentication: X-API-Key, scope inbound:read
- Response: Inbound fax details

### Download Inbound PDF
GET /inbound/{id}/pdf?token={artifactToken}
- Description: Stream the received fax's PDF
- Authentication: EITHER an artifact token OR X-API-Key with
  scope inbound:read
- Response: application/pdf, no-store cache headers

## Provider Webhook Routes

These are unauthenticated by API key; each verifies its own
provider-specific signature or shared secret before acting.

POST /phaxio-callback      - outbound status callback (HMAC signature)
POST /phaxio-inbound       - inbound fax received (HMAC signature)
POST /sinch-callback       - outbound status callback (HMAC signature or Basic auth)
POST /sinch-inbound        - inbound fax received (HMAC signature or Basic auth)

## Internal PBX Routes

Reachable only from the co-located Asterisk/FreeSWITCH host; gated by
the X-Internal-Secret header rather than the API key scheme.

POST /_internal/asterisk/inbound             - new inbound fax notification
POST /_internal/freeswitch/outbound_result   - outbound dial result callback

## Admin Routes

All admin routes require scope keys:manage.

POST   /admin/api-keys              - mint a new API key
GET    /admin/api-keys              - list API keys
DELETE /admin/api-keys/{id}         - revoke an API key
POST   /admin/api-keys/{id}/rotate  - rotate an API key's secret

GET    /admin/mailboxes                    - list mailboxes
POST   /admin/mailboxes                    - create a mailbox
GET    /admin/inbound-rules                - list routing rules
POST   /admin/inbound-rules                - create a to_number → mailbox rule
DELETE /admin/inbound-rules/{to_number}    - delete a routing rule

## Authentication

API-key-gated routes require the key in the X-API-Key header:
```
X-API-Key: fbk_live_<id>_<secret>
```

Artifact-gated routes (PDF retrieval) instead require a token query
parameter minted alongside the record; the token embeds the record id
and kind and is independently revoked by clearing its stored value.

## Error Responses

All endpoints return a standardized error body:
```json
{
  "code": "VALIDATION_FAILED",
  "message": "human-readable description"
}
```

## Rate Limiting

Every authenticated route class (send, status, inbound-list,
inbound-get, admin) enforces its own token-bucket policy, keyed by API
key id. A policy with RPM <= 0 disables limiting for that class.
*/
