// Package gallery is the slideshow interaction engine shared by the inline
// slider and the modal lightbox.
//
// A Session owns everything one mounted gallery needs:
//
//   - the normalized slides and the current index (wraparound navigation)
//   - a GestureRecognizer turning pointer drags into swipes
//   - an AutoplayScheduler advancing on a Clock while playing
//   - KeyboardBindings live only between mount/open and close/unmount
//   - a ThumbnailStrip kept scrolled to the current index
//
// Shells differ only in chrome. Close and Unmount cancel the timer and
// unregister the bindings before they return, so no callback outlives the
// session.
package gallery
