package gallery

import "sync"

// Lightbox owns the modal variant's open/close lifecycle over a grid of
// images. Every Open builds a fresh Session; nothing survives a close.
// Records are normalized once per SetImages and shared with every session.
type Lightbox struct {
	mu      sync.Mutex
	records []ImageRecord
	slides  []Slide
	opts    Options
	session *Session
}

// NewLightbox creates a closed lightbox. The variant is forced to modal.
func NewLightbox(records []ImageRecord, opts Options) *Lightbox {
	opts.Variant = VariantModal
	return &Lightbox{records: records, slides: Normalize(records), opts: opts}
}

// Open shows the slideshow at index, replacing any session already open.
func (l *Lightbox) Open(index int) (*Session, error) {
	l.mu.Lock()
	prev := l.session
	l.session = nil
	slides := l.slides
	opts := l.opts
	l.mu.Unlock()

	if prev != nil {
		prev.Unmount()
	}

	var s *Session
	userClose := opts.OnClose
	opts.InitialIndex = index
	opts.OnClose = func() {
		l.mu.Lock()
		if l.session == s {
			l.session = nil
		}
		l.mu.Unlock()
		if userClose != nil {
			userClose()
		}
	}

	s, err := mountSlides(slides, opts)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.session = s
	l.mu.Unlock()
	return s, nil
}

// Close closes the open session, if any.
func (l *Lightbox) Close() {
	l.mu.Lock()
	s := l.session
	l.mu.Unlock()

	if s != nil {
		s.Close()
	}
}

// Session returns the open session, or nil.
func (l *Lightbox) Session() *Session {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.session
}

// IsOpen reports whether a session is open.
func (l *Lightbox) IsOpen() bool {
	return l.Session() != nil
}

// Len returns the number of grid images.
func (l *Lightbox) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Records returns the grid images.
func (l *Lightbox) Records() []ImageRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]ImageRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Slides returns the normalized grid images. Payloads are not re-encoded.
func (l *Lightbox) Slides() []Slide {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Slide, len(l.slides))
	copy(out, l.slides)
	return out
}

// SetImages replaces the grid images and forwards them to an open session.
func (l *Lightbox) SetImages(records []ImageRecord) {
	slides := Normalize(records)

	l.mu.Lock()
	l.records = records
	l.slides = slides
	s := l.session
	l.mu.Unlock()

	if s != nil {
		s.setSlides(slides)
	}
}
