package utils

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// GerarCodigo gera um código aleatório seguro de 12 caracteres.
func GerarCodigo() (string, error) {
	const chars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	length := 12
	result := make([]byte, length)
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(chars))))
		if err != nil {
			return "", err
		}
		result[i] = chars[num.Int64()]
	}
	return string(result), nil
}

// HashCodigo retorna o hash bcrypt do código em texto.
func HashCodigo(codigo string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(codigo), bcrypt.DefaultCost)
	return string(hash), err
}

// VerificarCodigo compara hash bcrypt com o código em texto puro.
func VerificarCodigo(hash, codigo string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(codigo))
	return err == nil
}
