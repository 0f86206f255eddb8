package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const pageStyle = `
    <style>
      body {
        font-family: Arial, sans-serif;
        background-color: #333;
        color: #ccc;
      }
      a {
        color: lightblue;
      }
      table {
        border-collapse: collapse;
        width: 100%;
      }
      th, td {
        border: 1px solid black;
        padding: 8px;
        text-align: left;
      }
      th {
        background-color: #000;
      }
    </style>`

// Index serves the registration form.
func (h *APIHandler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(pageStyle+`
    <form action="/api/add/steamId" method="post">
      <input type="text" name="steamId" placeholder="Steam ID" />
      <input type="text" name="steamVU" placeholder="Steam Vanity URL" />
      <button type="submit">Submit</button>
    </form>
    <a href="/inventories">Check inventories</a>`))
}

// page renders a one-line result with navigation back to the two views.
func (h *APIHandler) page(c *gin.Context, message string) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(fmt.Sprintf(`%s
    %s
    <div>
      <a href="/inventories">Check inventories</a>
    </div>
    <div>
      <a href="/">Go back</a>
    </div>`, pageStyle, message)))
}

// InventoriesPage serves the inventory viewer: a button per catalog item
// that renders the prefetched snapshot immediately while a recompute runs,
// with websocket pushes settling the final figures.
func (h *APIHandler) InventoriesPage(c *gin.Context) {
	var buttons strings.Builder
	for _, it := range h.catalog.Items() {
		fmt.Fprintf(&buttons, `<button onclick="fetchData('%s')">%s</button>`, it.ID, it.Name)
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`<!DOCTYPE html>
  <html>
  <head>
    <title>Bandit Camp Inventories</title>`+pageStyle+`
    <script>
      let currentItemId = null;

      function render(data) {
        document.getElementById("data").innerHTML = `+"`"+`
          <p>Total Bandits Items: ${data.totalBanditsAmount}</p>
          <p>Total Bandits USD: $${data.totalBanditsUSD || "Error fetching price"}</p>
          <p>Total Bandits USD (No Fee): $${data.totalBanditsUSDNoFee === 0.01 ? "Error fetching price" : data.totalBanditsUSDNoFee}</p>
          <p>Steam Market Supply: ${data.steamMarketSupply}</p>
          <p>Single Item USD: $${data.price}</p>
          <p>Single Item USD (No Fee): $${data.priceNoFee}</p>
          <table border="1">
            <thead>
              <tr>
                <th>Steam ID</th>
                <th>Name</th>
                <th>Amount</th>
                <th>USD</th>
                <th>USD (No Fee)</th>
              </tr>
            </thead>
            <tbody>
              ${Object.keys(data.itemCounts)
                .sort((a, b) => data.itemCounts[b].amount - data.itemCounts[a].amount)
                .map(steamId => `+"`"+`
                <tr>
                  <td><a href="https://steamcommunity.com/profiles/${steamId}/" target="_blank">${steamId}</a></td>
                  <td>${data.itemCounts[steamId].name}</td>
                  <td>${data.itemCounts[steamId].amount}</td>
                  <td>$${data.itemCounts[steamId].USD}</td>
                  <td>$${data.itemCounts[steamId].USDNoFee}</td>
                </tr>
              `+"`"+`).join("")}
            </tbody>
          </table>
        `+"`"+`;
      }

      async function prefetchData(item) {
        const response = await fetch("/api/inventory?item=" + item + "&prefetch=true");
        if (!response.ok) {
          return;
        }
        const data = await response.json();
        if (!data.success) {
          return;
        }
        render(data);
      }

      async function fetchData(item) {
        currentItemId = item;
        prefetchData(item);
        try {
          const response = await fetch("/api/inventory?item=" + item);
          if (currentItemId !== item) {
            return;
          }
          if (!response.ok) {
            alert(response.statusText);
          }
          const data = await response.json();
          render(data);
        } catch {
          // Handle error
        }
      }

      const socket = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
      socket.onmessage = (event) => {
        const update = JSON.parse(event.data);
        if (update.item === currentItemId) {
          render(update.snapshot);
        }
      };
    </script>
  </head>
  <body>
    <div>
      `+buttons.String()+`
    </div>
    <div id="data"></div>
  </body>
</html>`))
}
