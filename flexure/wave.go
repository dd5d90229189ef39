package flexure

// refractionFactor is the standard air refraction correction for a
// wavelength in Angstroms (Ciddor dispersion formula).
func refractionFactor(wave float64) float64 {
	sigma2 := (1e4 / wave) * (1e4 / wave)

	return 1.0 +
		5.792105e-2/(238.0185-sigma2) +
		1.67917e-3/(57.362-sigma2)
}

// AirToVac converts wavelengths (Angstroms) from air to vacuum in
// place plus returns the slice. Wavelengths below 2000 Angstroms are
// left unchanged.
func AirToVac(wave []float64) []float64 {
	for i, w := range wave {
		if w >= 2000 {
			wave[i] = w * refractionFactor(w)
		}
	}

	return wave
}

// VacToAir converts wavelengths (Angstroms) from vacuum to air in
// place plus returns the slice. Wavelengths below 2000 Angstroms are
// left unchanged.
func VacToAir(wave []float64) []float64 {
	for i, w := range wave {
		if w >= 2000 {
			wave[i] = w / refractionFactor(w)
		}
	}

	return wave
}
