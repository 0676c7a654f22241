// Package stealth paces browser interactions like a human operator: variable
// delays, curved mouse movement, imperfect typing. Everything here is
// best-effort; a failed gesture never fails the surrounding action.
package stealth

import (
	"math"
	"math/rand"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// Pause sleeps a uniformly random duration between min and max milliseconds.
func Pause(minMs, maxMs int) {
	if maxMs < minMs {
		maxMs = minMs
	}
	time.Sleep(time.Duration(minMs+rand.Intn(maxMs-minMs+1)) * time.Millisecond)
}

// PauseGaussian sleeps a normally distributed duration; most pauses cluster
// around the mean, clamped to mean +/- 3 stddev.
func PauseGaussian(meanMs, stdDevMs int) {
	d := int(float64(meanMs) + rand.NormFloat64()*float64(stdDevMs))
	if lo := meanMs - 3*stdDevMs; d < lo {
		d = lo
	}
	if hi := meanMs + 3*stdDevMs; d > hi {
		d = hi
	}
	if d > 0 {
		time.Sleep(time.Duration(d) * time.Millisecond)
	}
}

// ThinkTime is the pause a person takes while reading before acting.
func ThinkTime() { PauseGaussian(1400, 600) }

// MoveMouse drags the pointer along a jittered cubic bezier curve with
// ease-in-out speed, the way a hand moves rather than a teleporting cursor.
func MoveMouse(p *rod.Page, fromX, fromY, toX, toY int) {
	dist := math.Hypot(float64(toX-fromX), float64(toY-fromY))
	steps := 30 + int(dist/25) + rand.Intn(12)

	cx1 := fromX + (toX-fromX)/3 + rand.Intn(80) - 40
	cy1 := fromY + (toY-fromY)/3 + rand.Intn(80) - 40
	cx2 := fromX + 2*(toX-fromX)/3 + rand.Intn(80) - 40
	cy2 := fromY + 2*(toY-fromY)/3 + rand.Intn(80) - 40

	for i := 0; i <= steps; i++ {
		t := easeInOut(float64(i) / float64(steps))
		x := bezier(float64(fromX), float64(cx1), float64(cx2), float64(toX), t) + float64(rand.Intn(3)-1)
		y := bezier(float64(fromY), float64(cy1), float64(cy2), float64(toY), t) + float64(rand.Intn(3)-1)
		_ = proto.InputDispatchMouseEvent{
			Type: proto.InputDispatchMouseEventTypeMouseMoved,
			X:    x,
			Y:    y,
		}.Call(p)
		delay := 7 + rand.Intn(9)
		if i < 4 || i > steps-4 {
			delay += 5
		}
		time.Sleep(time.Duration(delay) * time.Millisecond)
	}
}

// Click scrolls the element into view and clicks it with a realistic
// approach: curved movement to a random point inside the element, then press
// and release separated by human reaction time.
func Click(p *rod.Page, el *rod.Element) error {
	_ = el.ScrollIntoView()
	PauseGaussian(300, 150)

	shape, err := el.Shape()
	if err != nil || len(shape.Quads) == 0 {
		return el.Click("left", 1)
	}
	box := shape.Box()
	targetX := int(box.X + box.Width*(0.3+rand.Float64()*0.4))
	targetY := int(box.Y + box.Height*(0.3+rand.Float64()*0.4))

	fromX, fromY := viewportCenter(p)
	MoveMouse(p, fromX, fromY, targetX, targetY)
	Pause(50, 150)

	_ = proto.InputDispatchMouseEvent{
		Type:       proto.InputDispatchMouseEventTypeMousePressed,
		X:          float64(targetX),
		Y:          float64(targetY),
		Button:     proto.InputMouseButtonLeft,
		ClickCount: 1,
	}.Call(p)
	Pause(30, 90)
	_ = proto.InputDispatchMouseEvent{
		Type:       proto.InputDispatchMouseEventTypeMouseReleased,
		X:          float64(targetX),
		Y:          float64(targetY),
		Button:     proto.InputMouseButtonLeft,
		ClickCount: 1,
	}.Call(p)
	return nil
}

// Type enters text with variable rhythm: slower at the start, pauses at
// punctuation, occasional longer stops to re-read.
func Type(el *rod.Element, text string) error {
	for i, r := range text {
		if err := el.Input(string(r)); err != nil {
			return err
		}
		base := 25
		switch {
		case i < 10:
			base = 40
		case r == ' ' || r == ',' || r == '.':
			base = 60
		}
		PauseGaussian(base, 20)
		if rand.Float64() < 0.05 {
			PauseGaussian(300, 150)
		}
	}
	return nil
}

// Scroll pages down in irregular increments with reading pauses, triggering
// lazy-loaded content along the way.
func Scroll(p *rod.Page) {
	steps := 3 + rand.Intn(4)
	for i := 0; i < steps; i++ {
		px := 300 + rand.Intn(500)
		_, _ = p.Eval(`(dy) => window.scrollBy({top: dy, behavior: 'smooth'})`, px)
		PauseGaussian(400, 200)
		if rand.Float64() < 0.4 {
			PauseGaussian(1200, 500)
		}
	}
	if rand.Float64() < 0.4 {
		_, _ = p.Eval(`(dy) => window.scrollBy({top: dy, behavior: 'smooth'})`, -(100 + rand.Intn(120)))
		Pause(300, 700)
	}
}

// Wander moves the pointer to a random safe spot on the page. Humans do not
// keep the mouse perfectly still between actions.
func Wander(p *rod.Page) {
	w, h := viewportSize(p)
	margin := 100
	if w <= 2*margin || h <= 2*margin {
		return
	}
	x := margin + rand.Intn(w-2*margin)
	y := margin + rand.Intn(h-2*margin)
	MoveMouse(p, w/2, h/2, x, y)
	Pause(200, 500)
}

// InActiveWindow reports whether the local clock is within the configured
// HH:MM active-hours window.
func InActiveWindow(start, end string) bool {
	now := time.Now()
	s, err1 := time.Parse("15:04", start)
	e, err2 := time.Parse("15:04", end)
	if err1 != nil || err2 != nil {
		return true
	}
	from := time.Date(now.Year(), now.Month(), now.Day(), s.Hour(), s.Minute(), 0, 0, now.Location())
	to := time.Date(now.Year(), now.Month(), now.Day(), e.Hour(), e.Minute(), 0, 0, now.Location())
	return now.After(from) && now.Before(to)
}

func viewportCenter(p *rod.Page) (int, int) {
	w, h := viewportSize(p)
	return w / 2, h / 2
}

func viewportSize(p *rod.Page) (int, int) {
	w, h := 1400, 900
	if dims, err := p.Eval(`() => ({width: window.innerWidth, height: window.innerHeight})`); err == nil {
		if v := dims.Value.Get("width").Int(); v > 0 {
			w = v
		}
		if v := dims.Value.Get("height").Int(); v > 0 {
			h = v
		}
	}
	return w, h
}

func easeInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

func bezier(p0, p1, p2, p3, t float64) float64 {
	return math.Pow(1-t, 3)*p0 +
		3*math.Pow(1-t, 2)*t*p1 +
		3*(1-t)*math.Pow(t, 2)*p2 +
		math.Pow(t, 3)*p3
}
