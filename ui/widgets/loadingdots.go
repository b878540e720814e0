package widgets

import (
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// LoadingDots is a three-dot activity indicator shown while the
// library is being read.
type LoadingDots struct {
	widget.BaseWidget

	running bool
	animPos int
	anim    *fyne.Animation

	dots      [3]minSizeCircle
	container *fyne.Container
}

func NewLoadingDots() *LoadingDots {
	l := &LoadingDots{animPos: -1}
	for i := range l.dots {
		l.dots[i] = minSizeCircle{Circle: canvas.Circle{
			FillColor: theme.Color(theme.ColorNameDisabled)},
		}
	}
	l.anim = fyne.NewAnimation(time.Second, l.tick)
	l.anim.Curve = fyne.AnimationLinear
	l.anim.RepeatCount = fyne.AnimationRepeatForever
	l.ExtendBaseWidget(l)
	l.Hide()
	return l
}

func (l *LoadingDots) Running() bool {
	return l.running
}

func (l *LoadingDots) Start() {
	if l.running {
		return
	}
	l.running = true
	l.animPos = -1
	l.Show()
	l.anim.Start()
}

func (l *LoadingDots) Stop() {
	if !l.running {
		return
	}
	l.running = false
	l.anim.Stop()
	l.Hide()
}

func (l *LoadingDots) tick(f float32) {
	pos := min(int(f*float32(len(l.dots))), len(l.dots)-1)
	if pos == l.animPos {
		return
	}
	l.animPos = pos
	fg, disabled := theme.Color(theme.ColorNameForeground), theme.Color(theme.ColorNameDisabled)
	for i := range l.dots {
		if i == pos {
			l.dots[i].Circle.FillColor = fg
		} else {
			l.dots[i].Circle.FillColor = disabled
		}
	}
	l.Refresh()
}

func (l *LoadingDots) CreateRenderer() fyne.WidgetRenderer {
	if l.container == nil {
		layout := layout.NewCustomPaddedLayout(0, 0, 3, 3)
		l.container = container.NewHBox(
			container.New(layout, &l.dots[0]),
			container.New(layout, &l.dots[1]),
			container.New(layout, &l.dots[2]),
		)
	}
	return widget.NewSimpleRenderer(l.container)
}

type minSizeCircle struct {
	widget.BaseWidget
	Circle canvas.Circle
}

func (m *minSizeCircle) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(&m.Circle)
}

func (m *minSizeCircle) MinSize() fyne.Size {
	return fyne.NewSquareSize(theme.IconInlineSize() / 2)
}
