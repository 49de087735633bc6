package xid

import (
	"fmt"
	"os"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// 环境变量名。
const (
	EnvMachineID = "XID_MACHINE_ID"
	EnvPodName   = "POD_NAME"
	EnvHostname  = "HOSTNAME"
)

const machineMask = 1<<16 - 1

// 测试注入点
var osHostname = os.Hostname

// DefaultMachineID 按优先级获取机器 ID：
//
//  1. XID_MACHINE_ID（十进制 0-65535）
//  2. POD_NAME 的哈希
//  3. HOSTNAME 的哈希
//  4. os.Hostname() 的哈希
//
// 哈希策略在多节点部署中存在碰撞可能，需要可控唯一性时请显式设置 XID_MACHINE_ID。
// 全部不可用时返回 [ErrNoMachineID]。
func DefaultMachineID() (uint16, error) {
	if s := os.Getenv(EnvMachineID); s != "" {
		id, err := strconv.ParseUint(s, 10, 16)
		if err != nil {
			return 0, fmt.Errorf("xid: invalid %s value %q: %w", EnvMachineID, s, err)
		}
		return uint16(id), nil
	}
	for _, env := range []string{EnvPodName, EnvHostname} {
		if v := os.Getenv(env); v != "" {
			return hashToMachineID(v), nil
		}
	}
	if h, err := osHostname(); err == nil && h != "" {
		return hashToMachineID(h), nil
	}
	return 0, ErrNoMachineID
}

// hashToMachineID 将 64 位 xxhash 按 16 位分段异或折叠。
func hashToMachineID(s string) uint16 {
	h := xxhash.Sum64String(s)
	return uint16(h>>48) ^ uint16(h>>32) ^ uint16(h>>16) ^ uint16(h)
}
