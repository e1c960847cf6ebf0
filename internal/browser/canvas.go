package browser

import (
	"strings"

	"github.com/google/uuid"

	"github.com/anthonytopper/customer-web-xp/core/errors"
	"github.com/anthonytopper/customer-web-xp/core/highlight"
)

// Canvas draws highlight overlays as absolutely positioned elements
// appended to body. Each element gets a uuid element id as its handle.
type Canvas struct {
	doc *Document
}

var _ highlight.Canvas = (*Canvas)(nil)

const drawShape = `
	const ns = "http://www.w3.org/2000/svg";
	const el = path ? document.createElementNS(ns, "svg") : document.createElement("div");
	el.id = id;
	el.setAttribute("data-id", dataId);
	for (const c of classes) el.classList.add(c);
	el.setAttribute("style", style + ";left:" + x + "px;top:" + y + "px;width:" + w + "px;height:" + h + "px");
	if (path) {
		el.setAttribute("viewBox", "0 0 " + w + " " + h);
		el.setAttribute("preserveAspectRatio", "none");
		const p = document.createElementNS(ns, "path");
		p.setAttribute("d", path);
		p.setAttribute("fill", color);
		el.appendChild(p);
	} else {
		el.style.background = color;
	}
	document.body.appendChild(el);
	return true;`

func (c *Canvas) Draw(s highlight.Shape) (string, error) {
	handle := "hl-" + uuid.NewString()
	path := ""
	if s.Path != nil {
		path = s.SVGPath()
	}
	classes := s.Classes
	if classes == nil {
		classes = []string{}
	}
	_, err := c.doc.call(script("id, dataId, classes, color, style, x, y, w, h, path", drawShape),
		handle, s.ID, classes, s.Color, highlight.OverlayStyle, s.Rect.X, s.Rect.Y, s.Rect.Width, s.Rect.Height, path)
	if err != nil {
		return "", errors.Wrap(err, "draw overlay")
	}
	return handle, nil
}

func (c *Canvas) Remove(handle string) error {
	res, err := c.doc.call(script("id", `
		const el = document.getElementById(id);
		if (!el) return false;
		el.remove();
		return true;`), handle)
	if err != nil {
		return errors.Wrap(err, "remove overlay")
	}
	if !res.Value.Bool() {
		return errors.NewNotFound("overlay element", handle)
	}
	return nil
}

func (c *Canvas) RemoveClass(class string) error {
	if strings.TrimSpace(class) == "" {
		return nil
	}
	_, err := c.doc.call(script("cls", `
		Array.from(document.getElementsByClassName(cls)).forEach(el => el.remove());
		return true;`), class)
	return errors.Wrap(err, "remove overlays")
}

// Count returns the number of overlay elements carrying class.
func (c *Canvas) Count(class string) int {
	res, ok := c.doc.eval("countOverlays", script("cls", "return document.getElementsByClassName(cls).length;"), class)
	if !ok {
		return 0
	}
	return res.Value.Int()
}
