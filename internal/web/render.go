package web

import (
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"github.com/Zachkp/zach-dev-chunker/internal/chunker"
	"github.com/Zachkp/zach-dev-chunker/internal/connectivity"
)

const (
	sizeBadgeLimit = 50
	previewLimit   = 10
	previewRunes   = 300
)

var templateFuncs = template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
}

type sizeBadge struct {
	Index int
	Size  int
}

type chunkPreview struct {
	Index int
	Size  int
	Text  string
}

// stateView is the template-facing shape of an orchestrator snapshot.
type stateView struct {
	chunker.State

	InputChars int
	Checking   bool
	Connected  bool
	Submitting bool
	CanSubmit  bool
	CanClear   bool

	Badges        []sizeBadge
	MoreBadges    int
	Previews      []chunkPreview
	MorePreviews  int
	SelectedSmart bool
}

func newStateView(st chunker.State) stateView {
	v := stateView{
		State:         st,
		InputChars:    utf8.RuneCountInString(st.Config.InputText),
		Checking:      st.Connectivity == connectivity.Checking,
		Connected:     st.Connectivity == connectivity.Connected,
		Submitting:    st.Phase == chunker.PhaseSubmitting,
		SelectedSmart: st.Config.Method == chunker.MethodSmart,
	}
	v.CanSubmit = !v.Submitting && v.Connected && strings.TrimSpace(st.Config.InputText) != ""
	v.CanClear = st.Config.InputText != "" || st.Result != nil

	if r := st.Result; r != nil {
		for i, size := range r.ChunkSizes {
			if i == sizeBadgeLimit {
				v.MoreBadges = len(r.ChunkSizes) - sizeBadgeLimit
				break
			}
			v.Badges = append(v.Badges, sizeBadge{Index: i + 1, Size: size})
		}
		for i, chunk := range r.Chunks {
			if i == previewLimit {
				v.MorePreviews = len(r.Chunks) - previewLimit
				break
			}
			v.Previews = append(v.Previews, chunkPreview{
				Index: i + 1,
				Size:  r.ChunkSizes[i],
				Text:  truncateRunes(chunk, previewRunes),
			})
		}
	}
	return v
}

// truncateRunes cuts s to n characters, marking the cut with "...".
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
