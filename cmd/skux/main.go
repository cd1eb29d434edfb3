// skux 命令行入口：导入、归集、报表与暂存表监听。
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// configFile 由 --config 指定
var configFile string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "skux",
	Short: "skux 零售 SKU 数据归集工具",
	Long: `skux 维护一份规范化的零售 SKU 产品总表：
从暂存表导入来源数据，按固定流水线归集进产品总表，
并生成报表和活动提报产物。`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "配置文件路径（默认 skux.yaml）")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(consolidateCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(watchCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "输出版本号",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("skux v0.1.0")
	},
}
