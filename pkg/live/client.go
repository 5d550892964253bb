package live

// clientScript connects the page to its session. It forwards delegated
// events by hydration ID and applies the server's patch operations.
const clientScript = `(function () {
  var root = document.querySelector("[data-vgrid-session]");
  if (!root) return;
  var proto = location.protocol === "https:" ? "wss:" : "ws:";
  var url = proto + "//" + location.host + root.getAttribute("data-vgrid-ws") +
    "?session=" + encodeURIComponent(root.getAttribute("data-vgrid-session"));
  var ws = new WebSocket(url);

  function send(msg) {
    if (ws.readyState === WebSocket.OPEN) ws.send(JSON.stringify(msg));
  }
  function table() { return root.querySelector("table"); }
  function swap(el, html) {
    if (!el) return;
    var t = document.createElement("template");
    t.innerHTML = html;
    el.replaceWith(t.content);
  }

  root.getAttribute("data-vgrid-events").split(" ").forEach(function (type) {
    root.addEventListener(type, function (e) {
      if (type === "click") {
        var th = e.target.closest("th.sortable");
        if (th) {
          var key = th.getAttribute("data-key");
          send({type: "sort", sortBy: th.getAttribute("data-direction") === "ascending" ? "-" + key : key});
          return;
        }
      }
      var el = e.target.closest("tbody [data-hid]");
      if (!el) return;
      send({type: type, hid: el.getAttribute("data-hid"), key: e.key || "", value: e.target.value || ""});
    });
  });

  ws.onmessage = function (ev) {
    var op = JSON.parse(ev.data);
    switch (op.op) {
    case "replace":
      swap(root.querySelector('[data-hid="' + op.hid + '"]'), op.html);
      break;
    case "reset":
      swap(table().tBodies[0], op.html);
      break;
    case "append":
      table().tBodies[0].insertAdjacentHTML("beforeend", op.html);
      break;
    case "header":
      swap(table().tHead, op.html);
      break;
    case "error":
      console.error("vgrid:", op.message);
      break;
    }
  };
})();`
