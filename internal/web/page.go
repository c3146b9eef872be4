package web

import "html/template"

type pageData struct {
	Text     string
	BgColor  string
	FgColor  string
	CellSize float64
	Webcam   bool
	Started  bool
	FrameMs  int
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>trippy</title>
<link rel="icon" type="image/png" href="/favicon.png">
<style>
  :root { --cell-size: {{.CellSize}}px; --bg-color: {{.BgColor}}; --fg-color: {{.FgColor}}; }
  html, body { margin: 0; height: 100%; background: var(--bg-color); color: var(--fg-color); font-family: monospace; overflow: hidden; }
  #frame { position: fixed; inset: 0; width: 100vw; height: 100vh; image-rendering: pixelated; }
  #controls { position: fixed; left: 1em; bottom: 1em; display: flex; gap: .5em; align-items: center; }
  #controls * { font: inherit; color: var(--fg-color); background: var(--bg-color); border: 1px solid var(--fg-color); padding: .3em .6em; }
  #chars { width: calc((var(--input-width, 10) + 1) * 1ch); }
  .active { outline: 2px solid var(--fg-color); }
  #start { position: fixed; inset: 0; margin: auto; width: 10em; height: 3em; }
  #notice { position: fixed; right: 1em; bottom: 1em; }
</style>
</head>
<body>
<img id="frame" src="/frame.png" alt="">
<div id="controls">
  <input id="chars" value="{{.Text}}" aria-label="text">
  <button id="cols">colors</button>
  <button class="with-webcam{{if .Webcam}} active{{end}}">webcam</button>
  <button class="without-webcam{{if not .Webcam}} active{{end}}">noise</button>
  <button id="sharebtn">share</button>
</div>
{{if not .Started}}<button id="start">start</button>{{end}}
<div id="notice"></div>
<script>
const post = (path, body) => fetch(path, {method: "POST", headers: {"Content-Type": "application/json"}, body: JSON.stringify(body || {})}).then(r => r.json());
const frame = document.getElementById("frame");
const icon = document.querySelector('link[rel="icon"]');
const notice = document.getElementById("notice");
const apply = (s) => {
  document.body.style.setProperty("--bg-color", s.bgColor);
  document.body.style.setProperty("--fg-color", s.fgColor);
  document.body.style.setProperty("--cell-size", s.cellSize + "px");
  if (s.link) history.replaceState(null, "", s.link);
};
const viewport = () => post("/api/viewport", {width: window.innerWidth, height: window.innerHeight});
window.addEventListener("resize", viewport);
viewport();
const chars = document.getElementById("chars");
chars.style.setProperty("--input-width", chars.value.length);
chars.addEventListener("input", (e) => {
  e.target.style.setProperty("--input-width", e.target.value.length);
  post("/api/text", {text: e.target.value}).then(apply);
});
document.getElementById("cols").addEventListener("click", () => post("/api/colors/randomize").then(apply));
const withCam = document.querySelector(".with-webcam");
const withoutCam = document.querySelector(".without-webcam");
const webcam = (on) => post("/api/webcam", {on}).then((s) => {
  withCam.classList.toggle("active", s.webcam);
  withoutCam.classList.toggle("active", !s.webcam);
});
withCam.addEventListener("click", () => webcam(true));
withoutCam.addEventListener("click", () => webcam(false));
document.getElementById("sharebtn").addEventListener("click", () => post("/api/share").then((r) => {
  notice.textContent = r.error ? r.error : "shared " + r.url;
}));
const start = document.getElementById("start");
if (start) start.addEventListener("click", () => post("/api/start").then(() => start.remove()));
setInterval(() => { frame.src = "/frame.png?t=" + Date.now(); }, {{.FrameMs}});
setInterval(() => { icon.href = "/favicon.png?t=" + Date.now(); }, 500);
</script>
</body>
</html>
`))
