// Package master reads and writes master calibration products — the
// blob-store boundary of the reduction pipeline.
//
// A Frame addresses one product (Master<Type>_<Key>.fits) and provides
// Save/Load over a minimal FITS codec: a primary header carrying frame
// type, completed steps, and raw-file provenance, followed by one
// float64 image extension per data vector. Loading with reuse disabled
// or from a missing file returns a uniform nothing-loaded sentinel (nil
// vectors sized to the request) rather than an error, so callers can
// fall through to rebuilding the product.
//
// The codec writes BITPIX -64 one-dimensional images and reads images
// of BITPIX 8, 16, 32, 64, -32, and -64, which covers the archival sky
// spectra consumed by the flexure corrector (see LoadSpectrum).
package master
