package service

import (
	"reflect"
	"testing"

	"github.com/fortuna/nyx/internal/store"
)

func TestPlayingTricodes(t *testing.T) {
	games := []*store.GameRow{
		{Home: "BOS", Away: "LAL"},
		{Home: "PHX", Away: "BOS"},
		{Home: "DEN", Away: "MIN"},
	}

	got := playingTricodes(games)
	want := []string{"BOS", "DEN", "LAL", "MIN", "PHX"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("playingTricodes = %v, want %v", got, want)
	}
}

func TestPlayingTricodesEmptySlate(t *testing.T) {
	if got := playingTricodes(nil); len(got) != 0 {
		t.Errorf("playingTricodes(nil) = %v, want empty", got)
	}
}
