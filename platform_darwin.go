//go:build darwin

package serial

// hostProfile returns the profile for the running kernel. Resolution is a
// compile-time decision; only Linux and Darwin are supported and other
// platforms fail to build.
func hostProfile() *Profile { return darwinProfile }
