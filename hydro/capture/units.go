package capture

// Flow values stay in CMS throughout the analysis; conversion to L/s happens
// only at the presentation boundary.

// CMSToLPS converts cubic meters per second to liters per second.
func CMSToLPS(cms float64) float64 { return cms * 1000 }

// LPSToCMS converts liters per second to cubic meters per second.
func LPSToCMS(lps float64) float64 { return lps / 1000 }
