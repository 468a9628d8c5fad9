package gocard

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
)

// LayoutKind selects one of the card designs. It is fixed for a Card's lifetime.
type LayoutKind int

const (
	LayoutDefault LayoutKind = iota
	LayoutStudent
	LayoutInfluencer
)

// ErrUnknownLayout is returned by ParseLayoutKind for names outside the closed set.
var ErrUnknownLayout = errors.New("unknown layout")

// Layouts lists every LayoutKind.
var Layouts = []LayoutKind{LayoutDefault, LayoutStudent, LayoutInfluencer}

func (k LayoutKind) String() string {
	switch k {
	case LayoutDefault:
		return "default"
	case LayoutStudent:
		return "student"
	case LayoutInfluencer:
		return "influencer"
	}
	return fmt.Sprintf("LayoutKind(%d)", int(k))
}

// ParseLayoutKind maps a layout name to its kind. An empty name is Default.
// Unknown names return LayoutDefault together with an ErrUnknownLayout error,
// so callers that only log the error still get a usable layout.
func ParseLayoutKind(s string) (LayoutKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default":
		return LayoutDefault, nil
	case "student":
		return LayoutStudent, nil
	case "influencer":
		return LayoutInfluencer, nil
	}
	return LayoutDefault, fmt.Errorf("%w: %q", ErrUnknownLayout, s)
}

// Text the layouts draw when the user supplies nothing.
const (
	textDefaultName  = "Default Name"
	textContactInfo  = "Contact Info"
	textBackSide     = "Back Side Content"
	textSchoolName   = "joong dong high school"
	placeholderName  = "이름"
	placeholderClass = "반"
	placeholderGen   = "기수"
	placeholderClub  = "동아리"
	placeholderSNS   = "SNS"
	placeholderFans  = "팔로워 수"
	placeholderTopic = "콘텐츠"
)

// --- draw plans ---

// drawOp is one immediate-mode call against a Surface. An op that names an
// asset in needs() is skipped when that asset failed to load.
type drawOp interface {
	apply(s *Surface, images map[string]image.Image)
	needs() string
}

type fillOp struct {
	rect  image.Rectangle
	color Color
}

func (o fillOp) apply(s *Surface, _ map[string]image.Image) { s.FillRect(o.rect, o.color) }
func (o fillOp) needs() string                              { return "" }

type clearOp struct {
	rect image.Rectangle
}

func (o clearOp) apply(s *Surface, _ map[string]image.Image) { s.ClearRect(o.rect) }
func (o clearOp) needs() string                              { return "" }

type imageOp struct {
	asset string
	rect  image.Rectangle
}

func (o imageOp) apply(s *Surface, images map[string]image.Image) {
	s.DrawImage(images[o.asset], o.rect)
}
func (o imageOp) needs() string { return o.asset }

type lineOp struct {
	x1, y1, x2, y2 float64
	width          float64
	color          Color
}

func (o lineOp) apply(s *Surface, _ map[string]image.Image) {
	s.StrokeLine(o.x1, o.y1, o.x2, o.y2, o.width, o.color)
}
func (o lineOp) needs() string { return "" }

type textOp struct {
	text  string
	x, y  float64
	style TextStyle
	after string // asset this text is captioning, if any
}

func (o textOp) apply(s *Surface, _ map[string]image.Image) {
	s.FillText(o.text, o.x, o.y, o.style)
}
func (o textOp) needs() string { return o.after }

// plan is an ordered list of draw calls for one face.
type plan struct {
	ops []drawOp
}

func (p *plan) add(ops ...drawOp) { p.ops = append(p.ops, ops...) }

// assets returns the distinct asset names the plan depends on, in order.
func (p *plan) assets() []string {
	var names []string
	seen := map[string]bool{}
	for _, op := range p.ops {
		if n := op.needs(); n != "" && !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

// texts returns the strings drawn by the plan's text ops.
func (p *plan) texts() []string {
	var out []string
	for _, op := range p.ops {
		if t, ok := op.(textOp); ok {
			out = append(out, t.text)
		}
	}
	return out
}

// execute applies every op whose dependency is present in images and
// returns how many ops were skipped.
func (p *plan) execute(s *Surface, images map[string]image.Image) int {
	skipped := 0
	for _, op := range p.ops {
		if n := op.needs(); n != "" && images[n] == nil {
			skipped++
			continue
		}
		op.apply(s, images)
	}
	return skipped
}

// --- per-layout routines ---

func bodyStyle(f frame, size float64, bold bool, align TextAlign) TextStyle {
	return TextStyle{
		Font:     &Font{Name: FontPretendard, Size: f.Size(size), Bold: bold},
		Color:    ColorBlack,
		Align:    align,
		Baseline: BaselineMiddle,
	}
}

// refRect converts a reference-frame rectangle to surface pixels.
func (f frame) refRect(x, y, w, h float64) image.Rectangle {
	x0, y0 := f.X(x), f.Y(y)
	x1, y1 := f.X(x+w), f.Y(y+h)
	return image.Rect(int(math.Round(x0)), int(math.Round(y0)), int(math.Round(x1)), int(math.Round(y1)))
}

func (f frame) all() image.Rectangle {
	return image.Rect(0, 0, int(f.w), int(f.h))
}

// defaultFront is the two-line placeholder card shown by Default and,
// until fields arrive, by Influencer.
func defaultFront(p *plan, f frame) {
	style := bodyStyle(f, 100, false, AlignCenter)
	p.add(
		textOp{text: textDefaultName, x: f.CenterX(0), y: f.CenterY(-100), style: style},
		textOp{text: textContactInfo, x: f.CenterX(0), y: f.CenterY(0), style: style},
	)
}

// setupFrontPlan is the front face drawn once at construction.
func setupFrontPlan(kind LayoutKind, f frame) *plan {
	p := &plan{}
	p.add(fillOp{rect: f.all(), color: ColorWhite})
	switch kind {
	case LayoutStudent:
		// The student front stays blank until fields are submitted.
	case LayoutDefault, LayoutInfluencer:
		defaultFront(p, f)
	}
	return p
}

// setupBackPlan is the back face drawn once at construction.
func setupBackPlan(kind LayoutKind, f frame) *plan {
	p := &plan{}
	p.add(fillOp{rect: f.all(), color: ColorWhite})
	switch kind {
	case LayoutStudent:
		// Logo square: half the short side, centered, lifted 50px.
		const size = ReferenceHeight / 2
		x := (ReferenceWidth - size) / 2.0
		y := (ReferenceHeight-size)/2.0 - 50
		p.add(
			imageOp{asset: AssetLogo, rect: f.refRect(x, y, size, size)},
			textOp{
				text: textSchoolName,
				x:    f.CenterX(0),
				y:    f.CenterY(350),
				style: TextStyle{
					Font:     &Font{Name: FontHurricane, Size: f.Size(60)},
					Color:    ColorBlack,
					Align:    AlignCenter,
					Baseline: BaselineMiddle,
				},
				after: AssetLogo,
			},
		)
	case LayoutDefault, LayoutInfluencer:
		p.add(textOp{
			text:  textBackSide,
			x:     f.CenterX(0),
			y:     f.CenterY(0),
			style: bodyStyle(f, 100, false, AlignCenter),
		})
	}
	return p
}

// updateFrontPlan redraws the front face from fields. It always starts from
// a cleared white surface so repeated updates never accumulate.
func updateFrontPlan(kind LayoutKind, f frame, fields FieldSet) *plan {
	p := &plan{}
	p.add(clearOp{rect: f.all()}, fillOp{rect: f.all(), color: ColorWhite})
	switch kind {
	case LayoutStudent:
		studentFront(p, f, fields)
	case LayoutInfluencer:
		influencerFront(p, f, fields)
	case LayoutDefault:
		defaultFront(p, f)
	}
	return p
}

// studentFront draws the divider and the field text whether or not the
// background artwork loads, so a submitted front is never blank. The back's
// school name captions the logo and is dropped together with it.
func studentFront(p *plan, f frame, fields FieldSet) {
	// Background artwork sits left of the divider.
	size := ReferenceHeight * 0.8
	bgX := (ReferenceWidth-size)/2 - 580 + 110
	bgY := (ReferenceHeight-size)/2 + 120
	p.add(imageOp{asset: AssetBackground, rect: f.refRect(bgX, bgY, size*0.8, size*2/3)})

	p.add(lineOp{
		x1: f.X(900), y1: f.Y(200),
		x2: f.X(900), y2: f.Y(ReferenceHeight - 200),
		width: f.Size(8),
		color: ColorBlack,
	})

	nameStyle := bodyStyle(f, 80, true, AlignLeft)
	lineStyle := bodyStyle(f, 60, false, AlignLeft)
	p.add(
		textOp{text: fields.Value(FieldName, placeholderName), x: f.CenterX(-35), y: f.Y(300), style: nameStyle},
		textOp{text: "class " + fields.Value(FieldClass, placeholderClass), x: f.CenterX(-50), y: f.Y(450), style: lineStyle},
		textOp{text: fields.Value(FieldGeneration, placeholderGen) + "th", x: f.CenterX(-50), y: f.Y(600), style: lineStyle},
		textOp{text: fields.Value(FieldClub, placeholderClub), x: f.CenterX(-50), y: f.Y(750), style: lineStyle},
	)
}

func influencerFront(p *plan, f frame, fields FieldSet) {
	style := bodyStyle(f, 100, false, AlignCenter)
	rows := []struct {
		label, key, placeholder string
		y                       float64
	}{
		{"이름", FieldName, placeholderName, 300},
		{"SNS", FieldSNS, placeholderSNS, 500},
		{"팔로워", FieldFollowers, placeholderFans, 700},
		{"콘텐츠", FieldContent, placeholderTopic, 900},
	}
	for _, r := range rows {
		p.add(textOp{
			text:  r.label + ": " + fields.Value(r.key, r.placeholder),
			x:     f.CenterX(0),
			y:     f.Y(r.y),
			style: style,
		})
	}
}
