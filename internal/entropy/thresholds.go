package entropy

import "github.com/gfwx-project/gfwx/internal/bio"

// encodeS picks a Golomb-Rice remainder width from the local context
// estimate and codes s with it: a small sum_sq relative to context[1]
// selects interleaved coding at a small pot (cheap for values clustered
// near zero); a large one selects a wider pot or a sign-and-magnitude
// signed code, depending on which the context's variance favors.
func encodeS(w *bio.Writer, s int32, sumSq uint32, context [2]uint32, isChroma bool) error {
	threshold := uint32(100)
	if isChroma {
		threshold = 250
	}

	switch {
	case sumSq < 2*context[1]+threshold:
		return bio.InterleavedCode(w, s, 0)
	case sumSq < 2*context[1]+950:
		return bio.InterleavedCode(w, s, 1)
	case sumSq < 3*context[1]+3000:
		if sumSq < 5*context[1]+400 {
			return bio.SignedCode(w, s, 1)
		}
		return bio.InterleavedCode(w, s, 2)
	case sumSq < 3*context[1]+12000:
		if sumSq < 5*context[1]+3000 {
			return bio.SignedCode(w, s, 2)
		}
		return bio.InterleavedCode(w, s, 3)
	case sumSq < 4*context[1]+44000:
		if sumSq < 6*context[1]+12000 {
			return bio.SignedCode(w, s, 3)
		}
		return bio.InterleavedCode(w, s, 4)
	default:
		return bio.SignedCode(w, s, 4)
	}
}

// getS is encodeS's decode-side mirror: it must apply the exact same
// threshold ladder over the same context so it picks the pot the encoder
// used.
func getS(r *bio.Reader, sumSq uint32, context [2]uint32, isChroma bool) (int32, error) {
	threshold := uint32(100)
	if isChroma {
		threshold = 250
	}

	switch {
	case sumSq < 2*context[1]+threshold:
		return bio.InterleavedDecode(r, 0)
	case sumSq < 2*context[1]+950:
		return bio.InterleavedDecode(r, 1)
	case sumSq < 3*context[1]+3000:
		if sumSq < 5*context[1]+400 {
			return bio.SignedDecode(r, 1)
		}
		return bio.InterleavedDecode(r, 2)
	case sumSq < 3*context[1]+12000:
		if sumSq < 5*context[1]+3000 {
			return bio.SignedDecode(r, 2)
		}
		return bio.InterleavedDecode(r, 3)
	case sumSq < 4*context[1]+44000:
		if sumSq < 6*context[1]+12000 {
			return bio.SignedDecode(r, 3)
		}
		return bio.InterleavedDecode(r, 4)
	default:
		return bio.SignedDecode(r, 4)
	}
}

// getRunCoderFast picks the next run-length code's remainder width for the
// Fast scheme from the decaying first-moment estimate, only when the
// current sample's zero-ness matches the run coder's on/off state (i.e. a
// genuine state transition just happened).
func getRunCoderFast(context [2]uint32, s, runCoder int32) int32 {
	if (s == 0) != (runCoder == 0) {
		return runCoder
	}
	switch {
	case context[0] < 1:
		return 4
	case context[0] < 2:
		return 3
	case context[0] < 4:
		return 2
	case context[0] < 8:
		return 1
	default:
		return 0
	}
}

// getRunCoder is getRunCoderFast's counterpart for Turbo/Contextual,
// additionally keyed on quality and the context's second moment.
func getRunCoder(context [2]uint32, s, q, runCoder int32, sumSq uint32) int32 {
	if (s == 0) != (runCoder == 0) {
		return runCoder
	}
	switch {
	case q == 1024:
		if context[0] < 2 {
			return 1
		}
		return 0
	case context[0] < 4 && context[1] < 2:
		return 4
	case context[0] < 8 && context[1] < 4:
		return 3
	case 2*sumSq < 3*context[1]+48:
		return 2
	case 2*sumSq < 5*context[1]+32:
		return 1
	default:
		return 0
	}
}
