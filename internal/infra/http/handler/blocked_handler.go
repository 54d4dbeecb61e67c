package handler

import (
	"net/http"
)

const blockedPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Request Blocked</title>
  <style>
    body { font-family: system-ui, sans-serif; text-align: center; margin-top: 10vh; color: #333; }
    h1 { font-size: 2rem; }
    p { color: #666; }
  </style>
</head>
<body>
  <h1>Request Blocked</h1>
  <p>Your request was flagged by our security filters and has been logged.</p>
  <p>If you believe this is a mistake, please get in touch.</p>
</body>
</html>
`

// Blocked serves the denial page browsers are redirected to.
func Blocked(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(blockedPage))
}
