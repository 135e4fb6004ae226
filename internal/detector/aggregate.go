package detector

// summarizeTiles derives the reporting geometry for each tile: the padded
// axis-aligned bounding box covering every member's circle, and the pip
// count. Output order matches input order. Tiles are never empty by
// construction, so this cannot fail.
func summarizeTiles(tiles []Tile, padding float64) []TileSummary {
	summaries := make([]TileSummary, 0, len(tiles))
	for _, tile := range tiles {
		summaries = append(summaries, TileSummary{
			Box:      tileBounds(tile.Members, padding),
			PipCount: len(tile.Members),
			Members:  tile.Members,
		})
	}
	return summaries
}

// tileBounds computes the box covering every member circle, then pads it on
// all sides. Radii count: a pip circle hanging over the box edge would be
// clipped by the overlay renderer otherwise.
func tileBounds(members []DotObservation, padding float64) BoundingBox {
	box := BoundingBox{
		MinX: members[0].X - members[0].R,
		MinY: members[0].Y - members[0].R,
		MaxX: members[0].X + members[0].R,
		MaxY: members[0].Y + members[0].R,
	}
	for _, m := range members[1:] {
		if m.X-m.R < box.MinX {
			box.MinX = m.X - m.R
		}
		if m.Y-m.R < box.MinY {
			box.MinY = m.Y - m.R
		}
		if m.X+m.R > box.MaxX {
			box.MaxX = m.X + m.R
		}
		if m.Y+m.R > box.MaxY {
			box.MaxY = m.Y + m.R
		}
	}
	box.MinX -= padding
	box.MinY -= padding
	box.MaxX += padding
	box.MaxY += padding
	return box
}
