// Package kernel provides the primitives shared by every domain package of the
// separation service: the UUID identifier value object and the Clock abstraction
// used to stamp separation start and creation times.
package kernel
