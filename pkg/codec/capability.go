package codec

// SupportsAnimatedFilter reports whether the codec can apply the named
// operator to an animated source natively, in a single pass, without the
// decode-every-frame/re-encode loop. The pure-Go pipeline has no native
// animated filters, so every animated edit takes the per-frame path; the
// query exists so the session can gate expensive per-frame work out of
// real-time previews without probing the platform.
func SupportsAnimatedFilter(op string) bool {
	return false
}
