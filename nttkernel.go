/*
Package nttkernel is a Go implementation of the negacyclic number theoretic transform
and of the modular arithmetic it depends on, for lattice-based cryptography libraries.

The ring package holds the modular arithmetic toolkit, the prime and root of unity
search, the root of unity tables, the transform engines and the dispatcher selecting
among them. The utils/cpufeatures package probes the CPU capabilities consumed by the
dispatcher, and cmd/nttkit is a command-line front end to the ring package.
*/
package nttkernel
