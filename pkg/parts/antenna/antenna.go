// Package antenna implements the flowerpot sleeve dipole: a half-wave
// radiator above a quarter-wave sleeve, housed in a printed tube split into
// sections that fit the printer's build height. Sections join with a male
// plug and a female socket keyed against rotation.
package antenna

import (
	"fmt"
	"math"

	"github.com/sixbitdeep/3D-Models/pkg/builder"
	"github.com/sixbitdeep/3D-Models/pkg/param"
	"github.com/sixbitdeep/3D-Models/pkg/parts"
	"github.com/sixbitdeep/3D-Models/pkg/pattern"
	"github.com/sixbitdeep/3D-Models/pkg/recipe"
	"github.com/sixbitdeep/3D-Models/pkg/report"
)

// Name is the family name.
const Name = "antenna"

// Object names registered in the document.
const (
	BottomCapObject      = "BottomCap"
	TopCapObject         = "TopCap"
	FeedpointClampObject = "FeedpointClamp"
	SleeveGaugeObject    = "SleeveGauge"
)

const (
	cutterMargin = 1.0
	mmPerInch    = 25.4

	// maxSections keeps section names to two digits.
	maxSections = 99

	linerOverlap  = 0.05
	lipHeight     = 1.0
	lipThickness  = 1.0
	grooveHeight  = 8.0
	grooveDepth   = 2.0
	grooveSetback = 15.0
	markHeight    = 1.5
	markDepth     = 0.5
	markPitch     = 4.0
	markSetback   = 5.0
	keySink       = 0.3
	minKeySkin    = 0.4
	plugWallSlack = 0.5
	channelSlack  = 2.0
	coaxSlack     = 4.0

	bossLength    = 5.0
	anchorWidth   = 10.0
	anchorThick   = 3.0
	anchorDrop    = 6.0
	tieSlotWidth  = 6.0
	tieSlotDepth  = 4.0
	wireHoleDia   = 4.0
	guideHeight   = 10.0
	guideSlits    = 3
	slitWidth     = 3.0
	slitFraction  = 0.6
	clampWall     = 4.0
	clampGap      = 0.3
	clampHeight   = 12.0
	clampSplit    = 2.0
	boltRadius    = 1.6 // M3 clearance
	gaugeWidth    = 15.0
	gaugeThick    = 3.0
	gaugeOverhang = 30.0

	layoutSpacing = 50.0
)

var _ parts.Family = Family{}

// Lengths are the electrical lengths of the antenna and how they split
// into printed sections.
type Lengths struct {
	Wavelength     float64
	HalfWave       float64 // radiator, velocity factor and trim applied
	QuarterNominal float64
	QuarterWave    float64 // sleeve, trim applied
	Total          float64
	SectionBody    float64
	Sections       int
	SleeveSections int
}

// Compute derives the element lengths for freqMHz. waveSpeed is in mm/s.
// A non-positive section body yields zero sections.
func Compute(freqMHz, waveSpeed, vf, trim, maxPrint, joint float64) Lengths {
	l := Lengths{Wavelength: waveSpeed / (freqMHz * 1e6)}
	l.HalfWave = l.Wavelength / 2 * vf * trim
	l.QuarterNominal = l.Wavelength / 4
	l.QuarterWave = l.QuarterNominal * trim
	l.Total = l.HalfWave + l.QuarterWave
	l.SectionBody = maxPrint - joint
	if l.SectionBody > 0 {
		l.Sections = int(math.Ceil(l.Total / l.SectionBody))
		l.SleeveSections = int(math.Ceil(l.QuarterWave / l.SectionBody))
	}
	return l
}

// SectionName returns the object name of section i (zero-based).
func SectionName(i int, sleeve, feedpoint bool) string {
	name := fmt.Sprintf("Section_%02d", i+1)
	if sleeve {
		name += "_Sleeve"
	}
	if feedpoint {
		name += "_FP"
	}
	return name
}

// CoaxGuideName returns the object name of coax guide i (zero-based).
func CoaxGuideName(i int) string { return fmt.Sprintf("CoaxGuide_%d", i+1) }

// Family is the flowerpot antenna family.
type Family struct{}

func (Family) Name() string { return Name }

func (Family) Description() string {
	return "VHF flowerpot sleeve dipole housing in printable sections"
}

func (Family) Defaults() param.Set {
	return param.NewSet(map[string]param.Value{
		"target_freq_mhz":   param.Number(127),
		"wave_speed":        param.Number(299792458000),
		"velocity_factor":   param.Number(0.95),
		"trim_factor":       param.Number(1.02),
		"coax_od":           param.Number(6.1),
		"sleeve_method":     param.Enum("foil"),
		"sleeve_channel_id": param.Number(18),
		"max_print_height":  param.Number(240),
		"tube_od":           param.Number(32),
		"wall_thickness":    param.Number(2.5),
		"joint_length":      param.Number(25),
		"joint_clearance":   param.Number(0.25),
		"chamfer_size":      param.Number(1.5),
		"key_width":         param.Number(4),
		"key_depth":         param.Number(2),
		"bottom_cap_height": param.Number(20),
		"top_cap_height":    param.Number(25),
		"dome_height":       param.Number(12),
		"drain_hole_dia":    param.Number(3.5),
		"num_drain_holes":   param.Number(4),
		"drain_phase":       param.Number(45),
		"drain_margin":      param.Number(0.5),
		"feedpoint_marks":   param.Number(3),
		"coax_guides":       param.Number(4),
		"clamp_bolt_margin": param.Number(0.2),
		"stack_layout":      param.Flag(true),
	})
}

// geometry holds the derived radii and lengths shared by every part.
type geometry struct {
	Lengths

	freq   float64
	method string
	layout bool

	outerR    float64
	innerR    float64
	femaleR   float64
	maleOuter float64
	maleInner float64
	channelR  float64
	wall      float64
	joint     float64
	clearance float64
	chamfer   float64
	keyW      float64
	keyD      float64
	keyLen    float64
	coaxOD    float64
	bottomH   float64
	topH      float64
	domeH     float64

	drains     []pattern.Point
	drainR     float64
	marks      []float64
	guides     int
	clampOuter float64
	clampInner float64
	boltY      float64
	boltZ      []float64
}

func derive(r *param.Reader, v *param.Validator) geometry {
	var g geometry
	g.freq = r.Number("target_freq_mhz")
	speed := r.Number("wave_speed")
	vf := r.Number("velocity_factor")
	trim := r.Number("trim_factor")
	maxPrint := r.Number("max_print_height")
	g.method = r.Enum("sleeve_method", "foil", "tube")
	g.coaxOD = r.Number("coax_od")
	channelID := r.Number("sleeve_channel_id")
	tubeOD := r.Number("tube_od")
	g.wall = r.Number("wall_thickness")
	g.joint = r.Number("joint_length")
	g.clearance = r.Number("joint_clearance")
	g.chamfer = r.Number("chamfer_size")
	g.keyW = r.Number("key_width")
	g.keyD = r.Number("key_depth")
	g.bottomH = r.Number("bottom_cap_height")
	g.topH = r.Number("top_cap_height")
	g.domeH = r.Number("dome_height")
	g.drainR = r.Number("drain_hole_dia") / 2
	drainN := r.Int("num_drain_holes")
	drainPhase := r.Number("drain_phase")
	drainMargin := r.Number("drain_margin")
	marks := r.Int("feedpoint_marks")
	g.guides = r.Int("coax_guides")
	boltMargin := r.Number("clamp_bolt_margin")
	g.layout = r.Flag("stack_layout")

	ok := true
	for _, c := range []struct {
		name string
		val  float64
	}{
		{"target_freq_mhz", g.freq},
		{"wave_speed", speed},
		{"velocity_factor", vf},
		{"trim_factor", trim},
		{"coax_od", g.coaxOD},
		{"sleeve_channel_id", channelID},
		{"tube_od", tubeOD},
		{"wall_thickness", g.wall},
		{"joint_length", g.joint},
		{"joint_clearance", g.clearance},
		{"key_width", g.keyW},
		{"key_depth", g.keyD},
		{"bottom_cap_height", g.bottomH},
		{"top_cap_height", g.topH},
		{"dome_height", g.domeH},
		{"drain_hole_dia", g.drainR},
	} {
		ok = v.Positive(c.name, c.val) && ok
	}
	ok = v.NonNegative("chamfer_size", g.chamfer) && ok
	ok = v.NonNegative("drain_margin", drainMargin) && ok
	ok = v.NonNegative("clamp_bolt_margin", boltMargin) && ok
	ok = v.AtLeast("num_drain_holes", float64(drainN), 0) && ok
	ok = v.AtLeast("feedpoint_marks", float64(marks), 0) && ok
	ok = v.AtLeast("coax_guides", float64(g.guides), 0) && ok
	if !ok {
		return g
	}

	g.outerR = tubeOD / 2
	g.innerR = g.outerR - g.wall
	g.femaleR = g.innerR + g.clearance
	g.maleOuter = g.innerR - g.clearance
	g.maleInner = g.innerR - g.wall
	g.channelR = channelID / 2
	g.keyLen = g.joint - 2

	// Structural rules; none of these is ever clamped.
	v.Less("wall_thickness", g.maleInner, g.maleOuter-plugWallSlack)
	v.Positive("wall_thickness", g.maleInner)
	v.Less("sleeve_channel_id", channelID, 2*g.innerR-channelSlack)
	v.Less("coax_od", g.coaxOD, channelID-coaxSlack)
	v.Greater("max_print_height", maxPrint, g.joint)
	v.Less("chamfer_size", g.chamfer, g.maleOuter-g.maleInner)
	v.Positive("key_length", g.keyLen)
	v.AtMost("key_depth", g.maleOuter+g.keyD+g.clearance, g.outerR-minKeySkin)
	v.AtLeast("top_cap_height", g.topH, g.joint)
	v.Greater("dome_height", g.domeH, g.wall)
	v.Greater("bottom_cap_height", g.bottomH, g.wall)

	g.Lengths = Compute(g.freq, speed, vf, trim, maxPrint, g.joint)
	if g.SectionBody > 0 {
		v.AtLeast("sections", float64(g.Sections), 1)
		v.AtMost("sections", float64(g.Sections), maxSections)

		// The feedpoint groove sits below the female socket and its marks
		// step down towards the male end without reaching it.
		grooveZ := g.grooveZ()
		pattern.CheckSpan(v, "feedpoint_groove", []float64{grooveZ + grooveHeight/2}, grooveHeight/2, 0, 0, g.SectionBody-g.joint)
		if marks > 0 {
			zs, err := pattern.Linear(grooveZ-markSetback, -markPitch, marks, g.joint+markSetback, grooveZ-markHeight)
			if err != nil {
				v.Failf("feedpoint_marks", "%v", err)
			}
			g.marks = zs
		}
	}

	if drainN > 0 {
		pts, err := pattern.Circular(drainN, g.outerR-g.wall, drainPhase)
		if err != nil {
			v.Failf("num_drain_holes", "%v", err)
		} else {
			pattern.CheckRadial(v, "drain_holes", pts, g.drainR, drainMargin, g.outerR)
			g.drains = pts
		}
	}

	g.clampOuter = g.channelR + clampWall
	g.clampInner = g.channelR + clampGap
	g.boltY = (g.clampInner + g.clampOuter) / 2
	g.boltZ = []float64{clampHeight * 0.25, clampHeight * 0.75}
	pattern.CheckSpan(v, "clamp_bolt_y", []float64{g.boltY}, boltRadius, boltMargin, g.clampInner, g.clampOuter)
	pattern.CheckSpan(v, "clamp_bolt_z", g.boltZ, boltRadius, boltMargin, 0, clampHeight)
	return g
}

func (g geometry) grooveZ() float64 { return g.SectionBody - g.joint - grooveSetback }

func (Family) Plan(p param.Set) (*parts.Plan, error) {
	v := param.NewValidator(Name)
	r := param.NewReader(p, v)
	g := derive(r, v)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var recipes []builder.Recipe
	add := func(s *recipe.Pipeline, x, y, z float64) {
		if g.layout && (x != 0 || y != 0 || z != 0) {
			s.At(x, y, z)
		}
		recipes = append(recipes, builder.Recipe{Name: s.Name, Shape: s})
	}

	z := 0.0
	add(g.bottomCap(), 0, 0, z)
	z += g.bottomH + g.joint + layoutSpacing
	for i := 0; i < g.Sections; i++ {
		sleeve := i < g.SleeveSections
		fp := i == g.SleeveSections-1
		add(g.section(SectionName(i, sleeve, fp), sleeve, fp), 0, 0, z)
		z += g.SectionBody + layoutSpacing
	}
	add(g.topCap(), 0, 0, z)
	for i := 0; i < g.guides; i++ {
		add(g.coaxGuide(CoaxGuideName(i)), 60, float64(i)*20, 0)
	}
	add(g.feedpointClamp(), 60, 100, 0)
	add(g.sleeveGauge(), 100, 0, 0)

	return &parts.Plan{
		Family:   Name,
		Recipes:  recipes,
		Report:   g.report(),
		Warnings: v.Warnings(),
	}, nil
}

// ---------------------------------------------------------------------------
// Shared features
// ---------------------------------------------------------------------------

// tube is a hollow cylinder standing on the origin.
func tube(name string, outerR, innerR, h float64) *recipe.Pipeline {
	return recipe.NewPipeline(name, recipe.Cylinder("outer", outerR, h)).
		Cut(recipe.Cylinder("bore", innerR, h+2*cutterMargin).At(0, 0, -cutterMargin))
}

// tipRing cuts a 45 degree chamfer on the outer edge of a plug of radius r
// whose free end is at z=0 and which extends along +Z.
func tipRing(r, ch float64) *recipe.Pipeline {
	return recipe.NewPipeline("tip-chamfer", recipe.Cylinder("ring", r+cutterMargin, ch+cutterMargin).At(0, 0, -cutterMargin)).
		Cut(recipe.Cone("taper", r-ch-cutterMargin, r, ch+cutterMargin).At(0, 0, -cutterMargin))
}

// plug is the male joint standing on z=0. Its chamfered free end is at
// z=0, or at the top when top is set.
func (g geometry) plug(top bool) *recipe.Pipeline {
	p := tube("plug", g.maleOuter, g.maleInner, g.joint)
	if g.chamfer == 0 {
		return p
	}
	ring := tipRing(g.maleOuter, g.chamfer)
	if top {
		ring.Rotated(180, 0, 0).At(0, 0, g.joint)
	}
	return p.Cut(ring)
}

// key protrudes from the plug's outer wall on +Y, starting at z.
func (g geometry) key(z float64) recipe.Primitive {
	return recipe.Box("key", g.keyW, g.keyD+keySink, g.keyLen).At(-g.keyW/2, g.maleOuter-keySink, z)
}

// keyway is the slot in the socket wall that takes the key, starting at z.
func (g geometry) keyway(z float64) recipe.Primitive {
	w := g.keyW + 2*g.clearance
	y0 := g.femaleR - cutterMargin
	y1 := g.maleOuter + g.keyD + g.clearance
	return recipe.Box("keyway", w, y1-y0, g.keyLen+1).At(-w/2, y0, z-0.5)
}

// ---------------------------------------------------------------------------
// Parts
// ---------------------------------------------------------------------------

// section is one tube section: female socket on top, male plug below z=0.
func (g geometry) section(name string, sleeve, feedpoint bool) *recipe.Pipeline {
	l := g.SectionBody
	s := recipe.NewPipeline(name, tube("tube", g.outerR, g.innerR, l)).
		Cut(recipe.Cylinder("socket", g.femaleR, g.joint+cutterMargin).At(0, 0, l-g.joint))
	if g.chamfer > 0 {
		s.Cut(recipe.Cone("entrance", g.femaleR, g.femaleR+g.chamfer+cutterMargin, g.chamfer+cutterMargin).At(0, 0, l-g.chamfer))
	}
	s.Cut(g.keyway(l - g.joint + 1)).
		Fuse(g.plug(false).At(0, 0, -g.joint)).
		Fuse(g.key(-g.joint + 1))

	if sleeve {
		start := g.joint + 2
		length := l - g.joint - 2 - start
		if length > 10 {
			s.Fuse(
				tube("liner", g.innerR+linerOverlap, g.channelR, length).At(0, 0, start),
				tube("lip", g.channelR+linerOverlap, g.channelR-lipThickness, lipHeight).At(0, 0, start),
			)
		}
	}
	if feedpoint {
		s.Cut(tube("groove", g.outerR+0.1, g.outerR-grooveDepth, grooveHeight).At(0, 0, g.grooveZ()))
		for i, z := range g.marks {
			s.Cut(tube(fmt.Sprintf("mark-%d", i+1), g.outerR+0.1, g.outerR-markDepth, markHeight).At(0, 0, z))
		}
	}
	return s
}

// bottomCap carries the coax exit, the drain holes and a cable-tie anchor,
// with a male plug on top.
func (g geometry) bottomCap() *recipe.Pipeline {
	h := g.bottomH
	coaxR := (g.coaxOD + 2) / 2
	bossR := coaxR + 3
	cavityR := g.maleInner

	span := 2*cavityR + g.wall
	anchor := recipe.NewPipeline("anchor", recipe.Box("bar", anchorWidth, span, anchorThick).At(-anchorWidth/2, -span/2, h-anchorDrop)).
		Cut(recipe.Box("tie-slot", tieSlotWidth, tieSlotDepth, anchorThick+2).At(-tieSlotWidth/2, -tieSlotDepth/2, h-anchorDrop-1))

	c := recipe.NewPipeline(BottomCapObject, recipe.Cylinder("body", g.outerR, h)).
		Fuse(g.plug(true).At(0, 0, h)).
		Fuse(g.key(h+1)).
		Cut(recipe.Cylinder("cavity", cavityR, h-g.wall+g.joint+cutterMargin).At(0, 0, g.wall)).
		Fuse(recipe.Cylinder("coax-boss", bossR, bossLength+g.wall).Along(recipe.AxisX).At(-g.outerR-bossLength, 0, h/2)).
		Cut(recipe.Cylinder("coax-exit", coaxR, g.outerR+bossLength+5).Along(recipe.AxisX).At(-g.outerR-bossLength-2, 0, h/2)).
		Cut(recipe.Cylinder("coax-up", coaxR, g.joint+h).At(0, 0, g.wall)).
		Fuse(anchor)
	for i, pt := range g.drains {
		c.Cut(recipe.Cylinder(fmt.Sprintf("drain-%d", i+1), g.drainR, g.wall+2*cutterMargin).At(pt.X, pt.Y, -cutterMargin))
	}
	return c
}

// topCap is the sealed dome with a female socket below and the radiator
// wire exit at the apex.
func (g geometry) topCap() *recipe.Pipeline {
	h := g.topH
	c := recipe.NewPipeline(TopCapObject, recipe.Cylinder("body", g.outerR, h)).
		Fuse(recipe.Dome("dome", g.outerR, g.domeH).At(0, 0, h)).
		Cut(recipe.Cylinder("socket", g.femaleR, g.joint+cutterMargin).At(0, 0, -cutterMargin))
	if g.chamfer > 0 {
		c.Cut(recipe.Cone("entrance", g.femaleR+g.chamfer+cutterMargin, g.femaleR, g.chamfer+cutterMargin).At(0, 0, -cutterMargin))
	}
	return c.Cut(
		g.keyway(1),
		recipe.Cylinder("cavity", g.innerR-g.wall, h-g.joint+cutterMargin).At(0, 0, g.joint),
		recipe.Dome("dome-cavity", g.outerR-g.wall, g.domeH-g.wall).At(0, 0, h),
		recipe.Cylinder("wire-exit", wireHoleDia/2, 2*g.wall+g.domeH+1).At(0, 0, h-g.wall),
	)
}

// coaxGuide centres the coax inside the sleeve channel. The slits open
// from the top so the ring flexes without falling apart.
func (g geometry) coaxGuide(name string) *recipe.Pipeline {
	outer := g.channelR - 0.5
	inner := g.coaxOD/2 + 0.5
	ring := recipe.NewPipeline(name, tube("ring", outer, inner, guideHeight))
	pts, _ := pattern.Circular(guideSlits, 0, 0)
	depth := guideHeight * slitFraction
	for i, pt := range pts {
		ring.Cut(recipe.Box(fmt.Sprintf("slit-%d", i+1), slitWidth, outer+cutterMargin, depth+cutterMargin).
			At(-slitWidth/2, 0, guideHeight-depth).
			Rotated(0, 0, pt.Angle))
	}
	return ring
}

// feedpointClamp is a split ring squeezed by bolts across the split.
func (g geometry) feedpointClamp() *recipe.Pipeline {
	c := recipe.NewPipeline(FeedpointClampObject, tube("ring", g.clampOuter, g.clampInner, clampHeight)).
		Cut(recipe.Box("split", clampSplit, g.clampOuter+cutterMargin, clampHeight+2*cutterMargin).At(-clampSplit/2, 0, -cutterMargin))
	for i, z := range g.boltZ {
		c.Cut(recipe.Cylinder(fmt.Sprintf("bolt-%d", i+1), boltRadius, 2*(g.clampOuter+cutterMargin)).
			Along(recipe.AxisX).
			At(-g.clampOuter-cutterMargin, g.boltY, z))
	}
	return c
}

// sleeveGauge is a cutting gauge for the copper sleeve with notches at the
// start mark, the nominal quarter wave and the trimmed cut length.
func (g geometry) sleeveGauge() *recipe.Pipeline {
	notch := func(name string, y, w, depth float64) recipe.Primitive {
		return recipe.Box(name, gaugeWidth+2, w, depth+0.3).At(-1, y, gaugeThick-depth)
	}
	return recipe.NewPipeline(SleeveGaugeObject, recipe.Box("bar", gaugeWidth, g.QuarterWave+gaugeOverhang, gaugeThick)).
		Cut(
			notch("nominal", g.QuarterNominal, 2, 1.2),
			notch("cut", g.QuarterWave, 3, 1.8),
			notch("start", 5, 2, 0.8),
		)
}

func (g geometry) report() *report.Report {
	inches := func(mm float64) string { return fmt.Sprintf("%.1f mm (%.1f in)", mm, mm/mmPerInch) }
	return report.New("VHF Flowerpot Antenna").
		Add("Frequency", g.freq, "MHz").
		Add("Wavelength", g.Wavelength, "mm").
		Text("Radiator (1/2 wave)", "%s", inches(g.HalfWave)).
		Text("Sleeve (1/4 wave)", "%s", inches(g.QuarterWave)).
		Text("Total length", "%s", inches(g.Total)).
		Add("Quarter wave nominal", g.QuarterNominal, "mm").
		Section("Housing").
		Dims("Tube OD/ID", "mm", 2*g.outerR, 2*g.innerR).
		Add("Sleeve channel ID", 2*g.channelR, "mm").
		Add("Liner wall", g.innerR-g.channelR, "mm").
		Add("Section body", g.SectionBody, "mm").
		Text("Sections", "%d total, %d sleeve", g.Sections, g.SleeveSections).
		Text("Sleeve method", "%s", g.method).
		Note("Export each part as STL and print standing on its socket end.")
}
