// Package language normalizes language codes for transcription.
//
// WhisperX expects ISO 639-1 codes. Configuration and yt-dlp metadata may
// carry ISO 639-2 codes, BCP 47 tags, or English names; ToISO2 maps all of
// them onto the two-letter form using golang.org/x/text/language.
package language
