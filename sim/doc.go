// Package sim provides the timing vocabulary and the hooking mechanism shared
// by the automaton, the display driver and the tools that observe them.
package sim
