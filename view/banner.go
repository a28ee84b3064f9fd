package view

import "time"

const DefaultBannerTTL = 5 * time.Second

// Banner is a transient user-visible message.
type Banner struct {
	Message   string
	ExpiresAt time.Time
}

// Remaining is how long the banner stays visible after now.
func (b Banner) Remaining(now time.Time) time.Duration {
	if d := b.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// Banners holds messages that dismiss themselves after a fixed delay.
type Banners struct {
	ttl   time.Duration
	items []Banner
}

func NewBanners(ttl time.Duration) *Banners {
	if ttl <= 0 {
		ttl = DefaultBannerTTL
	}
	return &Banners{ttl: ttl}
}

// Push adds a banner that expires ttl after now.
func (b *Banners) Push(message string, now time.Time) Banner {
	banner := Banner{Message: message, ExpiresAt: now.Add(b.ttl)}
	b.items = append(b.items, banner)
	return banner
}

// Active drops expired banners and returns the rest, oldest first.
func (b *Banners) Active(now time.Time) []Banner {
	kept := b.items[:0]
	for _, banner := range b.items {
		if banner.ExpiresAt.After(now) {
			kept = append(kept, banner)
		}
	}
	b.items = kept

	out := make([]Banner, len(kept))
	copy(out, kept)
	return out
}

func (b *Banners) TTL() time.Duration {
	return b.ttl
}
