package httpapi

import "net/http"

const landingHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>askdocs</title>
<style>
  body { font-family: -apple-system, "Segoe UI", Roboto, Helvetica, Arial, sans-serif; background: #f8fafc; color: #1e293b; max-width: 640px; margin: 3rem auto; padding: 0 1rem; line-height: 1.5; }
  h1 { font-size: 1.6rem; margin-bottom: 0.25rem; }
  .subtitle { color: #64748b; margin-top: 0; }
  h2 { font-size: 0.8rem; text-transform: uppercase; letter-spacing: 0.08em; color: #94a3b8; margin-top: 2rem; }
  pre { background: #0f172a; color: #e2e8f0; border-radius: 6px; padding: 0.9rem; overflow-x: auto; font-size: 0.85rem; }
  code { font-family: "SF Mono", Menlo, monospace; }
  li { margin-bottom: 0.3rem; }
</style>
</head>
<body>
<h1>askdocs</h1>
<p class="subtitle">Answers questions from indexed documentation, with links to the pages the answer came from.</p>

<h2>Ask</h2>
<pre><code>curl -s localhost:8080/ask \
  -d '{"channel": "general", "question": "How do I configure the index?"}'</code></pre>

<h2>Endpoints</h2>
<ul>
  <li><code>POST /ask</code> answer a question</li>
  <li><code>/mcp</code> MCP Streamable HTTP (tools: <code>ask</code>, <code>index_status</code>)</li>
  <li><a href="/health"><code>GET /health</code></a> vector store connectivity</li>
  <li><a href="/metrics"><code>GET /metrics</code></a> Prometheus metrics</li>
</ul>
</body>
</html>
`

func landingHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(landingHTML))
}
