// Package biquad implements second-order IIR filter sections in Direct
// Form II Transposed, plus serial section chains. Coefficient design
// lives in package design; this package only evaluates.
package biquad
