package document

// docCSS styles the level columns, node cards, field rows, and connector
// paths. Highlight classes are toggled by the embedded script only; the
// stylesheet itself is static.
const docCSS = `
    body { margin: 0; padding: 0; font-family: sans-serif; position: relative; }
    #container { display: grid; grid-auto-flow: column; grid-auto-columns: max-content; grid-gap: 80px; padding: 20px; align-items: start; }
    .level { display: flex; flex-direction: column; align-items: center; }
    .node { border: 1px solid #ccc; border-radius: 4px; margin-bottom: 40px; min-width: 150px; background: #fafafa; }
    .node-header { background: #e0e0e0; padding: 8px; font-weight: bold; text-align: center; border-bottom: 1px solid #ccc; }
    .fields { list-style: none; padding: 0; margin: 0; }
    .field { padding: 6px 8px; cursor: pointer; white-space: nowrap; }
    .field.highlighted { background: #fdd835; }
    .field.selected { background: #ff7043; }
    svg { position: absolute; top: 0; left: 0; pointer-events: none; }
    path.link { stroke: #888; fill: none; stroke-width: 2; marker-end: url(#arrow); }
    path.link.highlighted { stroke: #d32f2f; stroke-width: 3; }`

// docJS is the interactive behavior embedded in the document. It reads the
// payload from the #flow-data script tag and never touches the network.
//
// The __CURVE_OFFSET__ placeholder is substituted at render time.
//
// Selection state is a single immutable object recomputed per click and
// handed to applySelection, which repaints classes from it; no highlight
// state lives on the elements beyond the classes painted last. Reachability
// walks are iterative with a visited set, so cyclic link sets terminate.
// Scroll and resize redraws are coalesced to one per animation frame.
const docJS = `
    document.addEventListener('DOMContentLoaded', function () {
      var payload = JSON.parse(document.getElementById('flow-data').textContent);
      var nodes = payload.nodes, links = payload.links, levels = payload.levels;
      var container = document.getElementById('container');
      var svg = document.querySelector('svg');
      var svgNS = 'http://www.w3.org/2000/svg';
      var curveOffset = __CURVE_OFFSET__;

      function fieldRow(nid, alias) {
        return document.querySelector('.field[data-node="' + cssEscape(nid) + '"][data-field="' + cssEscape(alias) + '"]');
      }

      function cssEscape(s) {
        return String(s).replace(/["\\]/g, '\\$&');
      }

      levels.forEach(function (group) {
        var column = document.createElement('div');
        column.className = 'level';
        group.forEach(function (nid) {
          var node = nodes[nid];
          if (!node) return;
          var card = document.createElement('div');
          card.className = 'node';
          card.dataset.node = nid;
          var header = document.createElement('div');
          header.className = 'node-header';
          header.textContent = node.name || node.alias || nid;
          card.appendChild(header);
          var list = document.createElement('ul');
          list.className = 'fields';
          Object.keys(node.output).forEach(function (alias) {
            var row = document.createElement('li');
            row.className = 'field';
            row.dataset.node = nid;
            row.dataset.field = alias;
            row.title = node.output[alias].formula || '';
            row.textContent = alias;
            list.appendChild(row);
          });
          card.appendChild(list);
          column.appendChild(card);
        });
        container.appendChild(column);
      });

      var fwd = {}, bwd = {};
      links.forEach(function (l) {
        var s = l.source.nodeId + '|' + l.source.fieldAlias;
        var t = l.target.nodeId + '|' + l.target.fieldAlias;
        (fwd[s] = fwd[s] || []).push(t);
        (bwd[t] = bwd[t] || []).push(s);
      });

      function drawConnectors() {
        svg.setAttribute('width', document.documentElement.scrollWidth);
        svg.setAttribute('height', document.documentElement.scrollHeight);
        svg.querySelectorAll('path.link').forEach(function (el) { el.remove(); });
        var top = window.scrollY || window.pageYOffset;
        var left = window.scrollX || window.pageXOffset;
        links.forEach(function (l) {
          var from = fieldRow(l.source.nodeId, l.source.fieldAlias);
          var to = fieldRow(l.target.nodeId, l.target.fieldAlias);
          if (!from || !to) return;
          var a = from.getBoundingClientRect(), b = to.getBoundingClientRect();
          var x1 = a.right + left, y1 = a.top + a.height / 2 + top;
          var x2 = b.left + left, y2 = b.top + b.height / 2 + top;
          var path = document.createElementNS(svgNS, 'path');
          path.classList.add('link');
          path.dataset.src = l.source.nodeId + '|' + l.source.fieldAlias;
          path.dataset.tgt = l.target.nodeId + '|' + l.target.fieldAlias;
          path.setAttribute('d', 'M' + x1 + ',' + y1 +
            ' C' + (x1 + curveOffset) + ',' + y1 +
            ' ' + (x2 - curveOffset) + ',' + y2 +
            ' ' + x2 + ',' + y2);
          svg.appendChild(path);
        });
        paintSelection(currentSelection);
      }

      function reach(adj, start) {
        var visited = {};
        visited[start] = true;
        var out = {};
        var stack = (adj[start] || []).slice();
        while (stack.length > 0) {
          var key = stack.pop();
          if (visited[key]) continue;
          visited[key] = true;
          out[key] = true;
          var next = adj[key] || [];
          for (var i = 0; i < next.length; i++) stack.push(next[i]);
        }
        return out;
      }

      function computeSelection(key) {
        var ancestors = reach(bwd, key);
        var descendants = reach(fwd, key);
        var all = {};
        all[key] = true;
        Object.keys(ancestors).forEach(function (k) { all[k] = true; });
        Object.keys(descendants).forEach(function (k) { all[k] = true; });
        return { key: key, keys: all };
      }

      var currentSelection = null;

      function paintSelection(sel) {
        document.querySelectorAll('.field.highlighted, .field.selected').forEach(function (el) {
          el.classList.remove('highlighted', 'selected');
        });
        svg.querySelectorAll('path.link.highlighted').forEach(function (el) {
          el.classList.remove('highlighted');
        });
        if (!sel) return;
        Object.keys(sel.keys).forEach(function (k) {
          var sep = k.indexOf('|');
          var el = fieldRow(k.slice(0, sep), k.slice(sep + 1));
          if (!el) return;
          el.classList.add(k === sel.key ? 'selected' : 'highlighted');
        });
        svg.querySelectorAll('path.link').forEach(function (p) {
          if (sel.keys[p.dataset.src] && sel.keys[p.dataset.tgt]) p.classList.add('highlighted');
        });
      }

      document.querySelectorAll('.field').forEach(function (el) {
        el.addEventListener('click', function () {
          currentSelection = computeSelection(el.dataset.node + '|' + el.dataset.field);
          paintSelection(currentSelection);
        });
      });

      var redrawPending = false;
      function requestRedraw() {
        if (redrawPending) return;
        redrawPending = true;
        window.requestAnimationFrame(function () {
          redrawPending = false;
          drawConnectors();
        });
      }
      window.addEventListener('scroll', requestRedraw, { passive: true });
      window.addEventListener('resize', requestRedraw);

      drawConnectors();
    });`
