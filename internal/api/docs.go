package api

const docsHTML = `<!doctype html>
<html lang="en" data-theme="dark">
<head>
  <meta charset="utf-8" />
  <meta name="referrer" content="same-origin" />
  <meta name="viewport" content="width=device-width, initial-scale=1, shrink-to-fit=no" />
  <title>Stockfolio API</title>
  <link href="https://unpkg.com/@stoplight/elements@9.0.0/styles.min.css" rel="stylesheet" />
  <script src="https://unpkg.com/@stoplight/elements@9.0.0/web-components.min.js" crossorigin="anonymous"></script>
</head>
<body style="height: 100vh; margin: 0; position: relative;">
  <a href="/docs/streams" style="
    position: fixed;
    top: 12px;
    right: 16px;
    z-index: 9999;
    background: #161b22;
    border: 1px solid #30363d;
    border-radius: 6px;
    color: #58a6ff;
    font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
    font-size: 12px;
    font-weight: 500;
    padding: 5px 12px;
    text-decoration: none;
  ">Quote Stream Docs →</a>
  <elements-api
    apiDescriptionUrl="/openapi.json"
    router="hash"
    layout="sidebar"
    tryItCredentialsPolicy="same-origin"
    darkMode
  />
</body>
</html>`

const streamDocsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>Quote Streams · Stockfolio</title>
  <style>
    body {
      margin: 0 auto;
      max-width: 820px;
      padding: 24px;
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
      font-size: 14px;
      line-height: 1.65;
      background: #0d1117;
      color: #c9d1d9;
    }
    a { color: #58a6ff; text-decoration: none; }
    h1, h2 { color: #e6edf3; }
    code, pre { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; font-size: 13px; }
    pre { background: #161b22; border: 1px solid #30363d; border-radius: 6px; padding: 12px 16px; overflow-x: auto; }
  </style>
</head>
<body>
  <p><a href="/docs">← REST API</a></p>
  <h1>Quote streams</h1>
  <p>Every quote the scheduled refresh applies to the market book is pushed to
  connected clients. Holdings are not repriced by these updates.</p>

  <h2>Server-Sent Events</h2>
  <pre><code>curl -N 'http://127.0.0.1:5000/api/market/stream?symbols=AAPL,MSFT'</code></pre>
  <p>Each message has the form:</p>
  <pre><code>event: quote
data: {"symbol":"AAPL","name":"Apple Inc.","price":182.63,"change":2.4}</code></pre>
  <p>Omit <code>symbols</code> to receive every symbol.</p>

  <h2>WebSocket</h2>
  <pre><code>websocat 'ws://127.0.0.1:5000/api/market/ws?symbols=AAPL'</code></pre>
  <p>Frames are the same JSON objects as the SSE <code>data</code> field. Send
  <code>{"symbols":["TSLA","NVDA"]}</code> at any time to replace the filter; an empty
  list subscribes to everything.</p>

  <h2>Delivery</h2>
  <p>Each client has a 256-event buffer. Events for a client whose buffer is full are dropped
  rather than blocking other clients.</p>
</body>
</html>`
