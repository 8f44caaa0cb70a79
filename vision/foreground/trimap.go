package foreground

import (
	"github.com/bridgewiz/trunkgauge/rimage"
	"github.com/bridgewiz/trunkgauge/utils"
)

// BuildTrimap relaxes the band classification into a segmentation seed. Band pixels are definite
// foreground; pixels farther (including no-return pixels) or nearer than the band are only
// probably background.
//
// When cleaned is non-nil it must be the morphologically cleaned band mask and it replaces the
// band as the definite foreground, so gaps the cleaner bridged stay closed after refinement.
// Band pixels the cleaner removed become probable foreground and are decided from color.
func BuildTrimap(img *rimage.IntensityMap, band Band, cleaned *rimage.Mask) (*rimage.Trimap, error) {
	if img == nil || !img.HasData() {
		return nil, utils.NewInputError("depth image is empty")
	}
	w, h := img.Width(), img.Height()
	if cleaned != nil && (cleaned.Width() != w || cleaned.Height() != h) {
		return nil, utils.NewInputError("cleaned mask is %dx%d, depth image is %dx%d",
			cleaned.Width(), cleaned.Height(), w, h)
	}

	seed := rimage.NewTrimap(w, h)
	for y := 0; y < h; y++ {
		for x, v := range img.Row(y) {
			inBand := band.Classify(v) == ClassBand
			label := rimage.ProbableBackground
			switch {
			case cleaned == nil:
				if inBand {
					label = rimage.DefiniteForeground
				}
			case cleaned.Included(x, y):
				label = rimage.DefiniteForeground
			case inBand:
				label = rimage.ProbableForeground
			}
			seed.Set(x, y, label)
		}
	}
	return seed, nil
}
