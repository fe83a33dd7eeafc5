// Package language normalizes the language values reported by speech
// recognition vendors so prompt selection and history records use one
// code per language.
package language
