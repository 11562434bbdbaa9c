package mapbox

// StylesTileURL is the Mapbox Static Tiles endpoint as a Leaflet URL template.
// Leaflet substitutes {id} and {accessToken} from the layer options.
const StylesTileURL = "https://api.mapbox.com/styles/v1/{id}/tiles/{z}/{x}/{y}?access_token={accessToken}"

// Attribution is required by the Mapbox and OpenStreetMap terms.
const Attribution = `Map data &copy; <a href="https://www.openstreetmap.org/">OpenStreetMap</a> contributors, ` +
	`<a href="https://creativecommons.org/licenses/by-sa/2.0/">CC-BY-SA</a>, ` +
	`Imagery © <a href="https://www.mapbox.com/">Mapbox</a>`

// TileLayer describes the base map the browser should load.
type TileLayer struct {
	Name        string `json:"name"`
	URLTemplate string `json:"urlTemplate"`
	StyleID     string `json:"id"`
	AccessToken string `json:"accessToken"`
	MaxZoom     int    `json:"maxZoom"`
	TileSize    int    `json:"tileSize"`
	ZoomOffset  int    `json:"zoomOffset"`
	Attribution string `json:"attribution"`
}

// NewTileLayer builds the "Light Map" base layer for a style such as
// "mapbox/light-v11". Style tiles are 512px, so zoom is offset by one.
func NewTileLayer(styleID, accessToken string, maxZoom int) TileLayer {
	return TileLayer{
		Name:        "Light Map",
		URLTemplate: StylesTileURL,
		StyleID:     styleID,
		AccessToken: accessToken,
		MaxZoom:     maxZoom,
		TileSize:    512,
		ZoomOffset:  -1,
		Attribution: Attribution,
	}
}
