package adb

import (
	"crypto/x509"
	"encoding/base64"
	"encoding/binary"
	"encoding/pem"
	"fmt"
	"math/big"
)

// PublicKeyToPem 把公钥转成PEM(PKIX)格式
func PublicKeyToPem(key *PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(key.PublicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %v", err)
	}

	block := &pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: der,
	}
	return string(pem.EncodeToMemory(block)), nil
}

// PublicKeyToOpenSSH 把公钥转成authorized_keys格式
func PublicKeyToOpenSSH(key *PublicKey, comment string) string {
	if comment == "" {
		comment = key.Comment
	}

	// ssh-rsa的wire格式：string类型名、mpint指数、mpint模数
	var wire []byte
	wire = appendSSHString(wire, []byte("ssh-rsa"))
	wire = appendSSHString(wire, mpint(big.NewInt(int64(key.E))))
	wire = appendSSHString(wire, mpint(key.N))

	encoded := base64.StdEncoding.EncodeToString(wire)
	if comment == "" {
		return fmt.Sprintf("ssh-rsa %s", encoded)
	}
	return fmt.Sprintf("ssh-rsa %s %s", encoded, comment)
}

func appendSSHString(buffer, data []byte) []byte {
	length := make([]byte, 4)
	binary.BigEndian.PutUint32(length, uint32(len(data)))
	return append(append(buffer, length...), data...)
}

// mpint 大端字节串，最高位为1时补一个前导零
func mpint(n *big.Int) []byte {
	data := n.Bytes()
	if len(data) > 0 && data[0]&0x80 != 0 {
		return append([]byte{0}, data...)
	}
	return data
}
