package domain

import "hash/fnv"

// Палитра для курсоров; индекс выбирается детерминированно по user id,
// чтобы цвет переживал re-join.
var colorPalette = [...]string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231", "#911eb4",
	"#42d4f4", "#f032e6", "#bfef45", "#fabed4", "#469990",
	"#9a6324", "#800000", "#808000", "#000075", "#f8961e",
}

// ColorFor derives a stable display color from a user id.
func ColorFor(userID string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return colorPalette[h.Sum32()%uint32(len(colorPalette))]
}
