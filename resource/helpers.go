package resource

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	msgpack "gopkg.in/vmihailenco/msgpack.v2"

	"log"

	"github.com/gbl08ma/firedispatch/dispatch"
	"github.com/yarf-framework/yarf"
)

type resource struct {
	yarf.Resource
	coordinator *dispatch.Coordinator
}

func (r *resource) DecodeRequest(c *yarf.Context, v interface{}) error {
	contentType := c.Request.Header.Get("Content-Type")
	var err error
	switch {
	case strings.Contains(contentType, "msgpack"):
		err = msgpack.NewDecoder(c.Request.Body).Decode(v)
	default:
		err = json.NewDecoder(c.Request.Body).Decode(v)
	}

	if err != nil {
		return &yarf.CustomError{
			HTTPCode:  http.StatusBadRequest,
			ErrorMsg:  "Failed to decode request",
			ErrorBody: err.Error(),
		}
	}
	return nil
}

// RenderData takes a interface{} object and writes the encoded representation of it.
// Encoding used will be idented JSON, non-idented JSON, Msgpack or XML
func RenderData(c *yarf.Context, data interface{}) {
	RenderDataWithStatus(c, http.StatusOK, data)
}

// RenderDataWithStatus is like RenderData but also sets the HTTP status code of the response
func RenderDataWithStatus(c *yarf.Context, status int, data interface{}) {
	accept := c.Request.Header.Get("Accept")
	switch {
	case strings.Contains(accept, "json"):
		c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Response.WriteHeader(status)
		c.RenderJSON(data)
	case strings.Contains(accept, "xml") && !strings.Contains(accept, "xhtml"):
		c.Response.Header().Set("Content-Type", "application/xml; charset=utf-8")
		c.Response.WriteHeader(status)
		c.RenderXML(data)
	case strings.Contains(accept, "msgpack"):
		RenderMsgpack(c, status, data)
	default:
		c.Response.Header().Set("Content-Type", "application/json; charset=utf-8")
		c.Response.WriteHeader(status)
		c.RenderJSONIndent(data)
	}
}

// RenderMsgpack takes a interface{} object and writes the Msgpack encoded string of it.
func RenderMsgpack(c *yarf.Context, status int, data interface{}) {
	c.Response.Header().Set("Content-Type", "application/msgpack")
	// Set content
	encoded, err := msgpack.Marshal(data)
	if err != nil {
		log.Println(err)
		c.Response.WriteHeader(http.StatusInternalServerError)
		c.Response.Write([]byte(err.Error()))
	} else {
		c.Response.WriteHeader(status)
		c.Response.Write(encoded)
	}
}

type apiFieldError struct {
	Field   string `msgpack:"field" json:"field" xml:"field"`
	Code    string `msgpack:"code" json:"code" xml:"code"`
	Message string `msgpack:"message" json:"message" xml:"message"`
}

// RenderError writes the response for coordinator errors, and returns nil if it did so.
// Other errors are returned unchanged, for yarf to handle
func RenderError(c *yarf.Context, err error) error {
	var derr *dispatch.Error
	if !errors.As(err, &derr) {
		return err
	}

	status := http.StatusConflict
	switch derr.Kind {
	case dispatch.KindValidation:
		status = http.StatusBadRequest
	case dispatch.KindNotFound:
		status = http.StatusNotFound
	}

	body := []apiFieldError{}
	for _, f := range derr.Fields {
		body = append(body, apiFieldError(f))
	}
	if len(body) == 0 {
		body = append(body, apiFieldError{
			Code:    string(derr.Kind),
			Message: derr.Reason,
		})
	}
	RenderDataWithStatus(c, status, body)
	return nil
}

func stationFilter(c *yarf.Context) string {
	return c.Request.URL.Query().Get("station")
}
