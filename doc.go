// Package sysprops is a client for the Android-style system property
// service: a bounded key/value configuration store owned by a
// privileged init process and reached over a unix stream socket.
//
// Reads fall back when the service is unreachable. Get consults, in
// order: the live service, the static build property file, the kernel
// boot command line (androidboot.X tokens as ro.X), and finally the
// caller's default. Set and List speak only to the live service; there
// is no trustworthy local substitute for mutation or enumeration.
//
// Every operation dials its own connection and is safe for concurrent
// use, but the store itself is not transactional across calls.
package sysprops
