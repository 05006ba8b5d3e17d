package presenter

import "fraksi/internal/rejection"

var messages = map[rejection.Kind]string{
	rejection.KindInvalidInput:   "Mohon masukkan angka yang valid.",
	rejection.KindUncovered:      "Harga berada di luar rentang yang tercakup tabel Auto Rejection saham (mulai Rp 50 ke atas).",
	rejection.KindUnreachable:    "Harga target tidak sesuai dengan fraksi/tick dari harga acuan berdasarkan aturan fraksi harga.",
	rejection.KindOutOfBand:      "Harga target berada di luar batas ARA/ARB dari harga acuan.",
	rejection.KindIterationLimit: "Perhitungan melebihi batas langkah yang diizinkan. Periksa kembali input.",
	rejection.KindInternal:       "Terjadi kesalahan. Silakan coba lagi.",
}

// Message returns the user-facing text for err, or "" for nil.
func Message(err error) string {
	kind := rejection.KindOf(err)
	if kind == rejection.KindNone {
		return ""
	}
	return messages[kind]
}
