package game

import "github.com/tvandenbrink/tafel-racer/internal/track"

func (s *Session) Track() *track.Manager { return s.track }
