// hrctl 运维命令行：数据库迁移、岗位导出、技能导入、密码哈希
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
