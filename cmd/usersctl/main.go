// Package main provides the usersctl CLI.
//
// usersctl 通过配置选择存储后端（memory / sqlite / postgres / mysql / redis），
// 对用户执行注册、查询、检索、修改与删除，结果以 JSON 输出到标准输出。
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
