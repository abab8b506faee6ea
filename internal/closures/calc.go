package closures

// Default commission split applied when the submitting agent leaves the
// percentages blank.
const (
	DefaultOfficePct   = 30.0
	DefaultCaptadorPct = 35.0
	DefaultVendedorPct = 35.0
)

// Split is the money each party receives from a closed deal.
type Split struct {
	OfficeAmount   float64
	CaptadorAmount float64
	VendedorAmount float64
}

// ComputeSplit derives the commission amounts from the closure price and the
// three percentages. Plain float64 arithmetic, recomputed on every call.
// The percentages are taken as entered; nothing requires them to sum to 100.
func ComputeSplit(closurePrice, officePct, captadorPct, vendedorPct float64) Split {
	return Split{
		OfficeAmount:   closurePrice * officePct / 100,
		CaptadorAmount: closurePrice * captadorPct / 100,
		VendedorAmount: closurePrice * vendedorPct / 100,
	}
}
