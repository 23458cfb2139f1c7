package checkout

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
)

// ShowMessage wraps message in the markup the storefront styles as a
// message banner of the given type ("error", "success", "notice").
func ShowMessage(typ, message string) string {
	return `<ul class="messages"><li class="` + html.EscapeString(typ) + `-msg"><ul><li><span>` +
		html.EscapeString(message) + `</span></li></ul></li></ul>`
}

var widgetTemplate = template.Must(template.New("pargo-widget").Parse(`<div id="pargo-pickup" data-session="{{.SessionID}}">
<button type="button" id="pargo-select-point">Select a Pargo pickup point</button>
<div id="pargo-selected-point">{{with .Point}}{{.StoreName}}, {{.Address1}}, {{.City}}{{end}}</div>
<iframe id="pargo-map" src="{{.PointURL}}" style="display:none;width:100%;height:600px;border:0"></iframe>
</div>
<script>
(function () {
  var root = document.getElementById("pargo-pickup");
  var map = document.getElementById("pargo-map");
  document.getElementById("pargo-select-point").addEventListener("click", function () {
    map.style.display = "block";
  });
  window.addEventListener("message", function (event) {
    if (!event.data || !event.data.pargoPointCode) {
      return;
    }
    fetch({{.SelectURL}}, {
      method: "PUT",
      headers: {"Content-Type": "application/json"},
      body: JSON.stringify(event.data)
    }).then(function () {
      document.getElementById("pargo-selected-point").textContent =
        event.data.storeName + ", " + event.data.address1 + ", " + event.data.city;
      map.style.display = "none";
    });
  });
})();
</script>
`))

// Widget renders the pickup-point map snippet shown on the shipping-method
// step. The current selection, if any, is shown next to the button.
func Widget(pointURL string, s *Session) (string, error) {
	data := struct {
		SessionID string
		PointURL  string
		SelectURL string
		Point     interface{}
	}{
		SessionID: s.ID,
		PointURL:  pointURL,
		SelectURL: fmt.Sprintf("/checkout/sessions/%s/pickup-point", s.ID),
	}
	if point, ok := s.GetShipping(ShippingKey); ok {
		data.Point = point
	}

	var buf bytes.Buffer
	if err := widgetTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering pickup widget: %w", err)
	}
	return buf.String(), nil
}
